package library

import (
	"fmt"
	"slices"
)

// Catalog owns every Book and Person record. Lookups are linear scans; the
// collections are sized for manual data entry.
//
// Catalog is not safe for concurrent use.
type Catalog struct {
	books   []Book
	persons []Person
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// ------------------ Books ------------------

// AddBook appends b. Book ids are unique within the catalog.
func (c *Catalog) AddBook(b Book) error {
	if c.bookIndex(b.ID) >= 0 {
		return fmt.Errorf("book %d: %w", b.ID, ErrDuplicateID)
	}
	c.books = append(c.books, b)
	return nil
}

// RemoveBook removes and returns the book with the given id.
func (c *Catalog) RemoveBook(id int) (Book, error) {
	i := c.bookIndex(id)
	if i < 0 {
		return Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	b := c.books[i]
	c.books = slices.Delete(c.books, i, i+1)
	return b, nil
}

func (c *Catalog) FindBook(id int) (Book, bool) {
	if i := c.bookIndex(id); i >= 0 {
		return c.books[i], true
	}
	return Book{}, false
}

// Books returns a snapshot of all books in insertion order.
func (c *Catalog) Books() []Book {
	return slices.Clone(c.books)
}

func (c *Catalog) bookIndex(id int) int {
	return slices.IndexFunc(c.books, func(b Book) bool { return b.ID == id })
}

// ------------------ Personnel ------------------

// AddPerson stores a copy of p. Person ids are unique within the personnel
// set; they do not collide with book ids.
func (c *Catalog) AddPerson(p Person) error {
	if p == nil {
		return fmt.Errorf("add person: nil record")
	}
	if c.personIndex(p.PersonID()) >= 0 {
		return fmt.Errorf("person %d: %w", p.PersonID(), ErrDuplicateID)
	}
	c.persons = append(c.persons, p.clone())
	return nil
}

// RemovePerson removes and returns the person with the given id.
func (c *Catalog) RemovePerson(id int) (Person, error) {
	i := c.personIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("person %d: %w", id, ErrNotFound)
	}
	p := c.persons[i]
	c.persons = slices.Delete(c.persons, i, i+1)
	return p, nil
}

// FindPerson returns a copy of the person with the given id.
func (c *Catalog) FindPerson(id int) (Person, bool) {
	if i := c.personIndex(id); i >= 0 {
		return c.persons[i].clone(), true
	}
	return nil, false
}

// Persons returns copies of all persons in insertion order.
func (c *Catalog) Persons() []Person {
	out := make([]Person, len(c.persons))
	for i, p := range c.persons {
		out[i] = p.clone()
	}
	return out
}

func (c *Catalog) personIndex(id int) int {
	return slices.IndexFunc(c.persons, func(p Person) bool { return p.PersonID() == id })
}

// ------------------ Borrowing ------------------

// Borrow appends bookID to the borrower's history. Whether the book exists or
// is held by someone else is not checked.
func (c *Catalog) Borrow(personID, bookID int) error {
	b, err := c.borrower(personID)
	if err != nil {
		return err
	}
	return b.BorrowBook(bookID)
}

// Return removes bookID from the borrower's history.
func (c *Catalog) Return(personID, bookID int) error {
	b, err := c.borrower(personID)
	if err != nil {
		return err
	}
	return b.ReturnBook(bookID)
}

// History returns the borrower's borrowed book ids in borrow order.
func (c *Catalog) History(personID int) ([]int, error) {
	b, err := c.borrower(personID)
	if err != nil {
		return nil, err
	}
	return b.History(), nil
}

func (c *Catalog) borrower(personID int) (*Borrower, error) {
	i := c.personIndex(personID)
	if i < 0 {
		return nil, fmt.Errorf("person %d: %w", personID, ErrNotFound)
	}
	b, ok := c.persons[i].(*Borrower)
	if !ok {
		return nil, fmt.Errorf("person %d: %w", personID, ErrNotBorrower)
	}
	return b, nil
}
