package library

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// LibraryManager is a thin façade over the Catalog and its Store, keeping CLI
// code simple. The catalog is loaded once when the manager is created and
// saved once by Close.
type LibraryManager struct {
	store   Store
	catalog *Catalog
	log     *slog.Logger
}

// NewLibraryManager loads the catalog from store.
func NewLibraryManager(store Store, logger *slog.Logger) (*LibraryManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &LibraryManager{store: store, catalog: c, log: logger}, nil
}

// Save writes the current catalog to the store.
func (lm *LibraryManager) Save() error {
	return lm.store.Save(lm.catalog)
}

// Close saves the catalog and releases the store.
func (lm *LibraryManager) Close() error {
	return errors.Join(lm.Save(), lm.store.Close())
}

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(id int, title, author string) (Book, error) {
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	if title == "" {
		return Book{}, errors.New("title cannot be empty")
	}
	b := Book{ID: id, Title: title, Author: author}
	if err := lm.catalog.AddBook(b); err != nil {
		return Book{}, err
	}
	lm.log.Debug("book added", slog.Int("book_id", id))
	return b, nil
}

func (lm *LibraryManager) RemoveBook(id int) (Book, error) {
	b, err := lm.catalog.RemoveBook(id)
	if err != nil {
		return Book{}, err
	}
	lm.log.Debug("book removed", slog.Int("book_id", id))
	return b, nil
}

func (lm *LibraryManager) GetBook(id int) (Book, error) {
	b, ok := lm.catalog.FindBook(id)
	if !ok {
		return Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return b, nil
}

func (lm *LibraryManager) ListBooks() []Book { return lm.catalog.Books() }

// NextBookID returns one more than the largest book id in the catalog.
func (lm *LibraryManager) NextBookID() int {
	next := 1
	for _, b := range lm.catalog.books {
		if b.ID >= next {
			next = b.ID + 1
		}
	}
	return next
}

// ------------------ Personnel helpers ------------------

func (lm *LibraryManager) AddBorrower(id int, name, membershipType string) (*Borrower, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	b := NewBorrower(id, name, strings.TrimSpace(membershipType))
	if err := lm.catalog.AddPerson(b); err != nil {
		return nil, err
	}
	lm.log.Debug("borrower added", slog.Int("person_id", id))
	return b, nil
}

func (lm *LibraryManager) AddStaff(id int, name, position string) (*StaffMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	s := NewStaffMember(id, name, strings.TrimSpace(position))
	if err := lm.catalog.AddPerson(s); err != nil {
		return nil, err
	}
	lm.log.Debug("staff member added", slog.Int("person_id", id))
	return s, nil
}

func (lm *LibraryManager) RemovePerson(id int) (Person, error) {
	p, err := lm.catalog.RemovePerson(id)
	if err != nil {
		return nil, err
	}
	lm.log.Debug("person removed", slog.Int("person_id", id))
	return p, nil
}

func (lm *LibraryManager) GetPerson(id int) (Person, error) {
	p, ok := lm.catalog.FindPerson(id)
	if !ok {
		return nil, fmt.Errorf("person %d: %w", id, ErrNotFound)
	}
	return p, nil
}

func (lm *LibraryManager) ListPersons() []Person { return lm.catalog.Persons() }

// ------------------ Borrowing ------------------

// BorrowBook annotates the borrower's history. The book need not exist in the
// catalog and may be borrowed by several people at once.
func (lm *LibraryManager) BorrowBook(personID, bookID int) error {
	if err := lm.catalog.Borrow(personID, bookID); err != nil {
		return err
	}
	lm.log.Debug("book borrowed", slog.Int("person_id", personID), slog.Int("book_id", bookID))
	return nil
}

func (lm *LibraryManager) ReturnBook(personID, bookID int) error {
	if err := lm.catalog.Return(personID, bookID); err != nil {
		return err
	}
	lm.log.Debug("book returned", slog.Int("person_id", personID), slog.Int("book_id", bookID))
	return nil
}

// ViewHistory returns the borrower's currently borrowed book ids.
func (lm *LibraryManager) ViewHistory(personID int) ([]int, error) {
	return lm.catalog.History(personID)
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s", b.ID, truncate(b.Title, 30), truncate(b.Author, 25))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
