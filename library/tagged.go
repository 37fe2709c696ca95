package library

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Tagged records are CSV (RFC 4180) so delimiters inside fields are quoted.
//
//	books:     id,title,author
//	personnel: kind,id,name,detail,history
//
// history is the space-separated list of borrowed book ids and is empty for
// staff.

const (
	bookFields   = 3
	personFields = 5
)

// BookRecord returns the CSV fields for b.
func BookRecord(b Book) []string {
	return []string{strconv.Itoa(b.ID), b.Title, b.Author}
}

// BookFromRecord parses CSV fields produced by BookRecord.
func BookFromRecord(rec []string) (Book, error) {
	if len(rec) != bookFields {
		return Book{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, bookFields, len(rec))
	}
	id, err := parseID(rec[0])
	if err != nil {
		return Book{}, err
	}
	return Book{ID: id, Title: rec[1], Author: rec[2]}, nil
}

// PersonRecord returns the CSV fields for p, including its kind tag.
func PersonRecord(p Person) []string {
	rec := []string{string(p.Kind()), strconv.Itoa(p.PersonID()), p.PersonName(), PersonDetail(p), ""}
	if b, ok := p.(*Borrower); ok {
		rec[4] = joinIDs(b.borrowed)
	}
	return rec
}

// PersonFromRecord parses CSV fields produced by PersonRecord.
func PersonFromRecord(rec []string) (Person, error) {
	if len(rec) != personFields {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, personFields, len(rec))
	}
	kind, err := ParseKind(rec[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	id, err := parseID(rec[1])
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindBorrower:
		history, err := parseHistory(rec[4])
		if err != nil {
			return nil, err
		}
		return NewBorrower(id, rec[2], rec[3], history...), nil
	default:
		if strings.TrimSpace(rec[4]) != "" {
			return nil, fmt.Errorf("%w: staff record %d has a borrowing history", ErrMalformedRecord, id)
		}
		return NewStaffMember(id, rec[2], rec[3]), nil
	}
}

// MarshalTagged encodes one record as a single CSV line without the trailing
// newline. Fields containing newlines stay quoted, so the result may span
// several physical lines.
func MarshalTagged(rec []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(rec)
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", ErrMalformedRecord, s)
	}
	return id, nil
}

func parseHistory(s string) ([]int, error) {
	fields := strings.Fields(s)
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := parseID(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
