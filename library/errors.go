package library

import "errors"

var (
	// ErrNotFound is returned when a book or person id is not in the catalog.
	ErrNotFound = errors.New("not found")

	// ErrNotBorrowed is returned when a borrower returns a book they never borrowed.
	ErrNotBorrowed = errors.New("book was not borrowed by this person")

	// ErrAlreadyBorrowed is returned when a borrower borrows the same book twice.
	ErrAlreadyBorrowed = errors.New("book is already borrowed by this person")

	// ErrNotBorrower is returned when a borrowing operation targets a staff member.
	ErrNotBorrower = errors.New("person is not a borrower")

	// ErrDuplicateID is returned when an id is already taken in its collection.
	ErrDuplicateID = errors.New("id already exists")

	// ErrMalformedRecord is returned when a persisted record cannot be parsed.
	ErrMalformedRecord = errors.New("malformed record")
)
