package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against files in dir and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LIBRARY_LOG_LEVEL", "error")
	t.Setenv("LIBRARY_FORMAT", "tagged")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootShellSavesOnExit(t *testing.T) {
	dir := t.TempDir()
	books := filepath.Join(dir, "books.txt")
	users := filepath.Join(dir, "users.txt")

	out, err := execute(t, "add book\n1\nDune\nHerbert\nadd borrower\n5\nAnn\nStudent\nborrow\n5\n1\nexit\n",
		"--books", books, "--personnel", users)
	require.NoError(t, err)
	assert.Contains(t, out, "Book with ID 1 borrowed by Ann.")
	assert.NotContains(t, out, "> ", "no prompts without a terminal")

	data, err := os.ReadFile(books)
	require.NoError(t, err)
	assert.Equal(t, "1,Dune,Herbert\n", string(data))
	data, err = os.ReadFile(users)
	require.NoError(t, err)
	assert.Equal(t, "borrower,5,Ann,Student,1\n", string(data))

	out, err = execute(t, "", "books", "--books", books, "--personnel", users)
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")

	out, err = execute(t, "", "users", "--books", books, "--personnel", users)
	require.NoError(t, err)
	assert.Contains(t, out, "Borrower Name: Ann, ID: 5, Membership Type: Student")
	assert.Contains(t, out, "Currently Borrowed Books: 1")
}

func TestConvertLegacyToTagged(t *testing.T) {
	dir := t.TempDir()
	books := filepath.Join(dir, "books.txt")
	users := filepath.Join(dir, "users.txt")
	require.NoError(t, os.WriteFile(books, []byte("1,Dune,Herbert\n"), 0o644))
	require.NoError(t, os.WriteFile(users, []byte("5,Ann,Borrower\n6,Bob,Clerk\n"), 0o644))

	toBooks := filepath.Join(dir, "out", "books.csv")
	toUsers := filepath.Join(dir, "out", "users.csv")
	out, err := execute(t, "", "convert", "--format", "legacy", "--books", books, "--personnel", users,
		"--to", "tagged", "--to-books", toBooks, "--to-personnel", toUsers)
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 1 books and 2 persons from legacy to tagged.")

	data, err := os.ReadFile(toUsers)
	require.NoError(t, err)
	assert.Equal(t, "borrower,5,Ann,Borrower,\nstaff,6,Bob,Clerk,\n", string(data))
}

func TestConvertToSQLite(t *testing.T) {
	dir := t.TempDir()
	books := filepath.Join(dir, "books.txt")
	require.NoError(t, os.WriteFile(books, []byte("1,Dune,Herbert\n"), 0o644))
	db := filepath.Join(dir, "lib.db")

	_, err := execute(t, "", "convert", "--books", books, "--personnel", filepath.Join(dir, "users.txt"),
		"--to", "sqlite", "--to-db", db)
	require.NoError(t, err)

	out, err := execute(t, "", "books", "--format", "sqlite", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
}

func TestConvertRejectsSameStore(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "convert", "--books", filepath.Join(dir, "b"), "--personnel", filepath.Join(dir, "u"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same")
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := execute(t, "", "books", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
