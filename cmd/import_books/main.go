package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"library-catalog/config"
	"library-catalog/library"
)

// import_books adds every row of a CSV file to the configured catalog.
// Rows are either `title,author` or `id,title,author`; rows without an id get
// the next free one.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <books.csv>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := library.OpenStore(cfg.StoreConfig(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	manager, err := library.NewLibraryManager(store, logger)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(filepath.Clean(os.Args[1]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading import file: %v\n", err)
		store.Close()
		os.Exit(1)
	}
	successCount, errorCount := importBooks(os.Stdout, manager, f)
	f.Close()

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if err := manager.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving catalog: %v\n", err)
		os.Exit(1)
	}

	if successCount > 0 {
		fmt.Println("\nBooks in catalog:")
		fmt.Printf("%-5s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 87))
		for _, b := range manager.ListBooks() {
			fmt.Printf("%-5d %-50s %-30s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30))
		}
	}
}

// importBooks adds each CSV row through mgr and reports per-row progress.
func importBooks(w io.Writer, mgr *library.LibraryManager, r io.Reader) (successCount, errorCount int) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(w, "Line %d: ERROR - %v\n", perr.StartLine, perr.Err)
			errorCount++
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "ERROR - %v\n", err)
			errorCount++
			break
		}
		line, _ := cr.FieldPos(0)

		id, title, author, err := parseRow(rec, mgr.NextBookID())
		if err != nil {
			fmt.Fprintf(w, "Line %d: ERROR - %v\n", line, err)
			errorCount++
			continue
		}

		fmt.Fprintf(w, "Importing: %s by %s... ", title, author)
		if _, err := mgr.AddBook(id, title, author); err != nil {
			fmt.Fprintf(w, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(w, "SUCCESS (ID: %d)\n", id)
		successCount++
	}
	return successCount, errorCount
}

func parseRow(rec []string, nextID int) (id int, title, author string, err error) {
	switch len(rec) {
	case 2:
		return nextID, rec[0], rec[1], nil
	case 3:
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return 0, "", "", fmt.Errorf("bad book id %q", rec[0])
		}
		return id, rec[1], rec[2], nil
	}
	return 0, "", "", fmt.Errorf("want 2 or 3 fields, got %d", len(rec))
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
