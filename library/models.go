package library

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Book is a catalog entry. Books are never edited in place; replace them instead.
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Kind identifies which Person variant a record is.
type Kind string

const (
	KindBorrower Kind = "borrower"
	KindStaff    Kind = "staff"
)

// ParseKind maps a persisted tag back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBorrower:
		return KindBorrower, nil
	case KindStaff:
		return KindStaff, nil
	}
	return "", fmt.Errorf("unknown person kind %q", s)
}

// Person is implemented only by *Borrower and *StaffMember. The variant of a
// record is fixed when it is constructed.
type Person interface {
	PersonID() int
	PersonName() string
	Kind() Kind
	DisplayDetails() string

	clone() Person
}

// Borrower is a member who can borrow books.
type Borrower struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	MembershipType string `json:"membership_type"`

	borrowed []int
}

// NewBorrower builds a borrower with the given history, dropping repeated ids.
func NewBorrower(id int, name, membershipType string, history ...int) *Borrower {
	b := &Borrower{ID: id, Name: name, MembershipType: membershipType}
	for _, bookID := range history {
		_ = b.BorrowBook(bookID)
	}
	return b
}

func (b *Borrower) PersonID() int      { return b.ID }
func (b *Borrower) PersonName() string { return b.Name }
func (b *Borrower) Kind() Kind         { return KindBorrower }

func (b *Borrower) clone() Person {
	cp := *b
	cp.borrowed = slices.Clone(b.borrowed)
	return &cp
}

// BorrowBook records bookID at the end of the borrowing history.
func (b *Borrower) BorrowBook(bookID int) error {
	if slices.Contains(b.borrowed, bookID) {
		return fmt.Errorf("book %d: %w", bookID, ErrAlreadyBorrowed)
	}
	b.borrowed = append(b.borrowed, bookID)
	return nil
}

// ReturnBook removes bookID from the history. The history is left untouched
// when the book was never borrowed.
func (b *Borrower) ReturnBook(bookID int) error {
	i := slices.Index(b.borrowed, bookID)
	if i < 0 {
		return fmt.Errorf("book %d: %w", bookID, ErrNotBorrowed)
	}
	b.borrowed = slices.Delete(b.borrowed, i, i+1)
	return nil
}

// History returns the borrowed book ids in borrow order.
func (b *Borrower) History() []int {
	return slices.Clone(b.borrowed)
}

func (b *Borrower) DisplayDetails() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Borrower Name: %s, ID: %d, Membership Type: %s\n", b.Name, b.ID, b.MembershipType)
	if len(b.borrowed) == 0 {
		sb.WriteString("Currently Borrowed Books: None")
	} else {
		sb.WriteString("Currently Borrowed Books: ")
		sb.WriteString(joinIDs(b.borrowed))
	}
	return sb.String()
}

// StaffMember is library staff.
type StaffMember struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

func NewStaffMember(id int, name, position string) *StaffMember {
	return &StaffMember{ID: id, Name: name, Position: position}
}

func (s *StaffMember) PersonID() int      { return s.ID }
func (s *StaffMember) PersonName() string { return s.Name }
func (s *StaffMember) Kind() Kind         { return KindStaff }

func (s *StaffMember) clone() Person {
	cp := *s
	return &cp
}

func (s *StaffMember) DisplayDetails() string {
	return fmt.Sprintf("Librarian Name: %s, ID: %d, Position: %s", s.Name, s.ID, s.Position)
}

// PersonDetail returns the variant-specific field: membership type or position.
func PersonDetail(p Person) string {
	switch v := p.(type) {
	case *Borrower:
		return v.MembershipType
	case *StaffMember:
		return v.Position
	}
	return ""
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
