package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

// menuAliases maps the numbered menu entries to word commands.
var menuAliases = map[string]string{
	"1": "list books",
	"2": "list personnel",
	"3": "add book",
	"4": "remove book",
	"5": "borrow",
	"6": "return",
	"7": "history",
	"8": "exit",
}

type shell struct {
	sc     *bufio.Scanner
	out    io.Writer
	mgr    *library.LibraryManager
	prompt bool
}

func newShell(in io.Reader, out io.Writer, mgr *library.LibraryManager, prompt bool) *shell {
	return &shell{sc: bufio.NewScanner(in), out: out, mgr: mgr, prompt: prompt}
}

// run reads commands until "exit" or end of input. Failures are reported and
// the loop carries on.
func (s *shell) run() {
	if s.prompt {
		fmt.Fprintln(s.out, "Welcome to the Library Management System!")
		s.printHelp()
	}

	for {
		if s.prompt {
			fmt.Fprint(s.out, "\n> ")
		}
		if !s.sc.Scan() {
			return
		}
		cmd := strings.ToLower(strings.Join(strings.Fields(s.sc.Text()), " "))
		if alias, ok := menuAliases[cmd]; ok {
			cmd = alias
		}

		switch cmd {
		case "":
			continue
		case "list books":
			printBooks(s.out, s.mgr.ListBooks())
		case "list personnel", "list users":
			printPersons(s.out, s.mgr.ListPersons())
		case "add book":
			s.handleAddBook()
		case "remove book":
			s.handleRemoveBook()
		case "find book":
			s.handleFindBook()
		case "add borrower":
			s.handleAddBorrower()
		case "add staff":
			s.handleAddStaff()
		case "remove person":
			s.handleRemovePerson()
		case "find person":
			s.handleFindPerson()
		case "borrow":
			s.handleBorrow()
		case "return":
			s.handleReturn()
		case "history":
			s.handleHistory()
		case "save":
			if err := s.mgr.Save(); err != nil {
				s.fail(err)
			} else {
				fmt.Fprintln(s.out, "Catalog saved.")
			}
		case "help":
			s.printHelp()
		case "exit", "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return
		default:
			fmt.Fprintln(s.out, "Unknown command. Type 'help' to list the available commands.")
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Books: list books, add book, remove book, find book")
	fmt.Fprintln(s.out, "  Personnel: list personnel, add borrower, add staff, remove person, find person")
	fmt.Fprintln(s.out, "  Circulation: borrow, return, history")
	fmt.Fprintln(s.out, "  System: save, help, exit")
	fmt.Fprintln(s.out, "  Menu numbers 1-8 also work (1 list books ... 8 exit).")
}

// ------------------ Input helpers ------------------

// ask prompts for one line. ok is false at end of input.
func (s *shell) ask(label string) (string, bool) {
	if s.prompt {
		fmt.Fprintf(s.out, "%s: ", label)
	}
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *shell) askInt(label string) (int, bool) {
	raw, ok := s.ask(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid %s: %s\n", strings.ToLower(label), raw)
		return 0, false
	}
	return n, true
}

func (s *shell) fail(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

// ------------------ Books ------------------

func (s *shell) handleAddBook() {
	id, ok := s.askInt("Book ID")
	if !ok {
		return
	}
	title, ok := s.ask("Title")
	if !ok {
		return
	}
	author, ok := s.ask("Author")
	if !ok {
		return
	}
	b, err := s.mgr.AddBook(id, title, author)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book added: %s\n", b.Title)
}

func (s *shell) handleRemoveBook() {
	id, ok := s.askInt("Book ID")
	if !ok {
		return
	}
	b, err := s.mgr.RemoveBook(id)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book removed: %s\n", b.Title)
}

func (s *shell) handleFindBook() {
	id, ok := s.askInt("Book ID")
	if !ok {
		return
	}
	b, err := s.mgr.GetBook(id)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book Title: %s, Author: %s, Book ID: %d\n", b.Title, b.Author, b.ID)
}

// ------------------ Personnel ------------------

func (s *shell) handleAddBorrower() {
	id, ok := s.askInt("Person ID")
	if !ok {
		return
	}
	name, ok := s.ask("Name")
	if !ok {
		return
	}
	membership, ok := s.ask("Membership type")
	if !ok {
		return
	}
	b, err := s.mgr.AddBorrower(id, name, membership)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Added borrower '%s' with ID %d\n", b.Name, b.ID)
}

func (s *shell) handleAddStaff() {
	id, ok := s.askInt("Person ID")
	if !ok {
		return
	}
	name, ok := s.ask("Name")
	if !ok {
		return
	}
	position, ok := s.ask("Position")
	if !ok {
		return
	}
	m, err := s.mgr.AddStaff(id, name, position)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Added staff member '%s' with ID %d\n", m.Name, m.ID)
}

func (s *shell) handleRemovePerson() {
	id, ok := s.askInt("Person ID")
	if !ok {
		return
	}
	p, err := s.mgr.RemovePerson(id)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Person removed: %s\n", p.PersonName())
}

func (s *shell) handleFindPerson() {
	id, ok := s.askInt("Person ID")
	if !ok {
		return
	}
	p, err := s.mgr.GetPerson(id)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, p.DisplayDetails())
}

// ------------------ Circulation ------------------

func (s *shell) handleBorrow() {
	personID, bookID, ok := s.askPersonAndBook()
	if !ok {
		return
	}
	if err := s.mgr.BorrowBook(personID, bookID); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book with ID %d borrowed by %s.\n", bookID, s.personName(personID))
}

func (s *shell) handleReturn() {
	personID, bookID, ok := s.askPersonAndBook()
	if !ok {
		return
	}
	if err := s.mgr.ReturnBook(personID, bookID); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book with ID %d returned by %s.\n", bookID, s.personName(personID))
}

func (s *shell) handleHistory() {
	personID, ok := s.askInt("Person ID")
	if !ok {
		return
	}
	ids, err := s.mgr.ViewHistory(personID)
	if err != nil {
		s.fail(err)
		return
	}
	name := s.personName(personID)
	if len(ids) == 0 {
		fmt.Fprintf(s.out, "No borrowing history for %s.\n", name)
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	fmt.Fprintf(s.out, "Borrowing History for %s: %s\n", name, strings.Join(parts, " "))
}

func (s *shell) askPersonAndBook() (personID, bookID int, ok bool) {
	if personID, ok = s.askInt("Person ID"); !ok {
		return 0, 0, false
	}
	if bookID, ok = s.askInt("Book ID"); !ok {
		return 0, 0, false
	}
	return personID, bookID, true
}

func (s *shell) personName(id int) string {
	if p, err := s.mgr.GetPerson(id); err == nil {
		return p.PersonName()
	}
	return fmt.Sprintf("person %d", id)
}

// ------------------ Listings ------------------

func printBooks(w io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books in library.")
		return
	}
	fmt.Fprintf(w, "%-5s %-30s %-25s\n", "ID", "Title", "Author")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, b := range books {
		fmt.Fprintln(w, library.PrettyBook(b))
	}
}

func printPersons(w io.Writer, persons []library.Person) {
	if len(persons) == 0 {
		fmt.Fprintln(w, "No personnel registered.")
		return
	}
	for _, p := range persons {
		fmt.Fprintln(w, p.DisplayDetails())
	}
}
