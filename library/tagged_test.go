package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unmarshalTagged(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	rec, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return rec, nil
}

func TestTaggedBookWithDelimiters(t *testing.T) {
	b := Book{ID: 4, Title: `Cats, Dogs and "Mice"`, Author: "Ann"}
	line := MarshalTagged(BookRecord(b))
	assert.Equal(t, `4,"Cats, Dogs and ""Mice""",Ann`, line)

	rec, err := unmarshalTagged(line)
	require.NoError(t, err)
	got, err := BookFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestTaggedPersonKeepsVariantAndHistory(t *testing.T) {
	t.Run("borrower", func(t *testing.T) {
		b := NewBorrower(5, "Ann, Jr.", "Student", 1, 9)
		line := MarshalTagged(PersonRecord(b))
		assert.Equal(t, `borrower,5,"Ann, Jr.",Student,1 9`, line)

		rec, err := unmarshalTagged(line)
		require.NoError(t, err)
		p, err := PersonFromRecord(rec)
		require.NoError(t, err)
		got, ok := p.(*Borrower)
		require.True(t, ok)
		assert.Equal(t, "Ann, Jr.", got.Name)
		assert.Equal(t, []int{1, 9}, got.History())
	})

	t.Run("staff named Borrower stays staff", func(t *testing.T) {
		s := NewStaffMember(8, "Borrower Smith", "Clerk")
		rec, err := unmarshalTagged(MarshalTagged(PersonRecord(s)))
		require.NoError(t, err)
		p, err := PersonFromRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, s, p)
	})
}

func TestTaggedMalformed(t *testing.T) {
	tests := []struct {
		name string
		rec  []string
	}{
		{"too few fields", []string{"borrower", "5", "Ann"}},
		{"unknown kind", []string{"visitor", "5", "Ann", "x", ""}},
		{"bad id", []string{"staff", "five", "Ann", "x", ""}},
		{"bad history", []string{"borrower", "5", "Ann", "x", "1 two"}},
		{"staff with history", []string{"staff", "5", "Ann", "x", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PersonFromRecord(tt.rec)
			assert.True(t, errors.Is(err, ErrMalformedRecord), "got %v", err)
		})
	}

	_, err := BookFromRecord([]string{"1", "Dune"})
	assert.True(t, errors.Is(err, ErrMalformedRecord))

	_, err = unmarshalTagged(`1,"unterminated`)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}
