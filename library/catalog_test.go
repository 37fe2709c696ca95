package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.NoError(t, c.AddBook(Book{ID: 1, Title: "Dune", Author: "Herbert"}))
	require.NoError(t, c.AddBook(Book{ID: 2, Title: "Emma", Author: "Austen"}))
	require.NoError(t, c.AddPerson(NewBorrower(5, "Ann", "Student")))
	require.NoError(t, c.AddPerson(NewStaffMember(6, "Bob", "Clerk")))
	return c
}

func TestRemoveBook(t *testing.T) {
	c := seededCatalog(t)

	b, err := c.RemoveBook(1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, []Book{{ID: 2, Title: "Emma", Author: "Austen"}}, c.Books())
}

func TestRemoveBookAbsentLeavesCatalogUnchanged(t *testing.T) {
	c := seededCatalog(t)
	before := c.Books()

	_, err := c.RemoveBook(42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, before, c.Books())
}

func TestAddBookDuplicateID(t *testing.T) {
	c := seededCatalog(t)

	err := c.AddBook(Book{ID: 1, Title: "Other", Author: "X"})
	assert.True(t, errors.Is(err, ErrDuplicateID))
	assert.Len(t, c.Books(), 2)
}

func TestPersonAndBookIDsAreSeparate(t *testing.T) {
	c := seededCatalog(t)
	require.NoError(t, c.AddPerson(NewBorrower(1, "Cy", "Adult")))

	_, ok := c.FindBook(1)
	assert.True(t, ok)
	p, ok := c.FindPerson(1)
	require.True(t, ok)
	assert.Equal(t, "Cy", p.PersonName())
}

func TestFind(t *testing.T) {
	c := seededCatalog(t)

	b, ok := c.FindBook(2)
	assert.True(t, ok)
	assert.Equal(t, "Emma", b.Title)

	_, ok = c.FindBook(99)
	assert.False(t, ok)

	p, ok := c.FindPerson(6)
	require.True(t, ok)
	assert.Equal(t, KindStaff, p.Kind())

	_, ok = c.FindPerson(99)
	assert.False(t, ok)
}

func TestListsKeepInsertionOrder(t *testing.T) {
	c := NewCatalog()
	for _, id := range []int{9, 3, 7} {
		require.NoError(t, c.AddBook(Book{ID: id, Title: "T"}))
		require.NoError(t, c.AddPerson(NewStaffMember(id, "S", "P")))
	}

	var bookIDs, personIDs []int
	for _, b := range c.Books() {
		bookIDs = append(bookIDs, b.ID)
	}
	for _, p := range c.Persons() {
		personIDs = append(personIDs, p.PersonID())
	}
	assert.Equal(t, []int{9, 3, 7}, bookIDs)
	assert.Equal(t, []int{9, 3, 7}, personIDs)
}

func TestSnapshotsDoNotAliasCatalog(t *testing.T) {
	c := seededCatalog(t)

	books := c.Books()
	books[0].Title = "Changed"
	b, _ := c.FindBook(1)
	assert.Equal(t, "Dune", b.Title)

	p, _ := c.FindPerson(5)
	require.NoError(t, p.(*Borrower).BorrowBook(1))
	h, err := c.History(5)
	require.NoError(t, err)
	assert.Empty(t, h)

	dee := NewBorrower(10, "Dee", "Adult")
	require.NoError(t, c.AddPerson(dee))
	require.NoError(t, dee.BorrowBook(3))
	h, err = c.History(10)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestRemovePerson(t *testing.T) {
	c := seededCatalog(t)

	p, err := c.RemovePerson(6)
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.PersonName())
	assert.Len(t, c.Persons(), 1)

	_, err = c.RemovePerson(6)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Len(t, c.Persons(), 1)
}

func TestAddPersonDuplicateID(t *testing.T) {
	c := seededCatalog(t)
	err := c.AddPerson(NewStaffMember(5, "Eve", "Clerk"))
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestCatalogBorrowing(t *testing.T) {
	c := seededCatalog(t)

	require.NoError(t, c.Borrow(5, 1))
	require.NoError(t, c.Borrow(5, 404))
	h, err := c.History(5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 404}, h)

	err = c.Return(5, 2)
	assert.True(t, errors.Is(err, ErrNotBorrowed))
	h, _ = c.History(5)
	assert.Equal(t, []int{1, 404}, h)

	require.NoError(t, c.Return(5, 1))
	h, _ = c.History(5)
	assert.Equal(t, []int{404}, h)

	assert.True(t, errors.Is(c.Borrow(6, 1), ErrNotBorrower))
	assert.True(t, errors.Is(c.Borrow(99, 1), ErrNotFound))
	_, err = c.History(6)
	assert.True(t, errors.Is(err, ErrNotBorrower))
}

func TestSameBookBorrowedByTwoBorrowers(t *testing.T) {
	c := seededCatalog(t)
	require.NoError(t, c.AddPerson(NewBorrower(7, "Cy", "Adult")))

	require.NoError(t, c.Borrow(5, 1))
	require.NoError(t, c.Borrow(7, 1))
}
