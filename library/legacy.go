package library

import (
	"fmt"
	"strconv"
	"strings"
)

// The legacy line format is three comma-joined fields with no quoting. Only
// the first two commas split the line, so any further commas stay inside the
// last field, and a comma inside an earlier field shifts the split silently.

const legacyDelim = ','

// borrowerMarker is the substring that classifies a legacy personnel line as a
// Borrower. Lines without it load as StaffMember, so a staff member named
// "Borrower Smith" comes back as a Borrower, and a borrower whose name and
// membership type lack the word comes back as staff.
const borrowerMarker = "Borrower"

// Serialize renders the book as `id,title,author`.
func (b Book) Serialize() string {
	return legacyLine(b.ID, b.Title, b.Author)
}

// Serialize renders the borrower as `id,name,membershipType`. The borrowing
// history is not part of the legacy line.
func (b *Borrower) Serialize() string {
	return legacyLine(b.ID, b.Name, b.MembershipType)
}

// Serialize renders the staff member as `id,name,position`.
func (s *StaffMember) Serialize() string {
	return legacyLine(s.ID, s.Name, s.Position)
}

// DeserializeBook parses a legacy books line.
func DeserializeBook(line string) (Book, error) {
	id, title, author, err := splitLegacy(line)
	if err != nil {
		return Book{}, err
	}
	return Book{ID: id, Title: title, Author: author}, nil
}

// DeserializeBorrower parses a legacy personnel line as a Borrower with an
// empty history.
func DeserializeBorrower(line string) (*Borrower, error) {
	id, name, membership, err := splitLegacy(line)
	if err != nil {
		return nil, err
	}
	return NewBorrower(id, name, membership), nil
}

// DeserializeStaffMember parses a legacy personnel line as a StaffMember.
func DeserializeStaffMember(line string) (*StaffMember, error) {
	id, name, position, err := splitLegacy(line)
	if err != nil {
		return nil, err
	}
	return NewStaffMember(id, name, position), nil
}

// DeserializePerson infers the variant of a legacy personnel line from its
// content and parses it accordingly.
func DeserializePerson(line string) (Person, error) {
	if strings.IndexByte(line, legacyDelim) < 0 {
		return nil, fmt.Errorf("%w: no delimiter in %q", ErrMalformedRecord, line)
	}
	if strings.Contains(line, borrowerMarker) {
		return DeserializeBorrower(line)
	}
	return DeserializeStaffMember(line)
}

// SerializePerson renders any Person variant as a legacy line.
func SerializePerson(p Person) string {
	switch v := p.(type) {
	case *Borrower:
		return v.Serialize()
	case *StaffMember:
		return v.Serialize()
	}
	return legacyLine(p.PersonID(), p.PersonName(), "")
}

func legacyLine(id int, a, b string) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(id))
	sb.WriteByte(legacyDelim)
	sb.WriteString(a)
	sb.WriteByte(legacyDelim)
	sb.WriteString(b)
	return sb.String()
}

func splitLegacy(line string) (id int, second, rest string, err error) {
	pos1 := strings.IndexByte(line, legacyDelim)
	if pos1 < 0 {
		return 0, "", "", fmt.Errorf("%w: no delimiter in %q", ErrMalformedRecord, line)
	}
	pos2 := strings.IndexByte(line[pos1+1:], legacyDelim)
	if pos2 < 0 {
		return 0, "", "", fmt.Errorf("%w: want 3 fields in %q", ErrMalformedRecord, line)
	}
	pos2 += pos1 + 1

	id, err = strconv.Atoi(strings.TrimSpace(line[:pos1]))
	if err != nil {
		return 0, "", "", fmt.Errorf("%w: bad id %q", ErrMalformedRecord, line[:pos1])
	}
	return id, line[pos1+1 : pos2], line[pos2+1:], nil
}
