package library

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Database is a Store backed by a SQLite file.
type Database struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewDatabase(dbPath string, logger *slog.Logger) (*Database, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite store: database path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{
		db:   db,
		path: dbPath,
		log:  logger.With(slog.String("format", string(FormatSQLite))),
	}, nil
}

// Close closes the DB.
func (d *Database) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY,
            seq INTEGER NOT NULL,
            title TEXT NOT NULL,
            author TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS personnel (
            id INTEGER PRIMARY KEY,
            seq INTEGER NOT NULL,
            kind TEXT NOT NULL CHECK (kind IN ('borrower','staff')),
            name TEXT NOT NULL,
            detail TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS borrowed_books (
            person_id INTEGER NOT NULL REFERENCES personnel(id) ON DELETE CASCADE,
            book_id INTEGER NOT NULL,
            seq INTEGER NOT NULL,
            PRIMARY KEY (person_id, book_id)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load reads the whole catalog in insertion order.
func (d *Database) Load() (*Catalog, error) {
	c := NewCatalog()

	rows, err := d.db.Query(`SELECT id,title,author FROM books ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author); err != nil {
			rows.Close()
			return nil, err
		}
		if err := c.AddBook(b); err != nil {
			d.log.Warn("skipping record", slog.String("table", "books"), slog.String("error", err.Error()))
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	history, err := d.loadHistory()
	if err != nil {
		return nil, err
	}

	rows, err = d.db.Query(`SELECT id,kind,name,detail FROM personnel ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id                 int
			kind, name, detail string
		)
		if err := rows.Scan(&id, &kind, &name, &detail); err != nil {
			return nil, err
		}
		p, err := personFromRow(id, kind, name, detail, history[id])
		if err == nil {
			err = c.AddPerson(p)
		}
		if err != nil {
			d.log.Warn("skipping record", slog.String("table", "personnel"), slog.Int("id", id), slog.String("error", err.Error()))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	d.log.Info("catalog loaded",
		slog.String("db_file", d.path),
		slog.Int("books", len(c.books)),
		slog.Int("persons", len(c.persons)))
	return c, nil
}

func (d *Database) loadHistory() (map[int][]int, error) {
	rows, err := d.db.Query(`SELECT person_id, book_id FROM borrowed_books ORDER BY person_id, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make(map[int][]int)
	for rows.Next() {
		var personID, bookID int
		if err := rows.Scan(&personID, &bookID); err != nil {
			return nil, err
		}
		history[personID] = append(history[personID], bookID)
	}
	return history, rows.Err()
}

func personFromRow(id int, kind, name, detail string, history []int) (Person, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if k == KindBorrower {
		return NewBorrower(id, name, detail, history...), nil
	}
	return NewStaffMember(id, name, detail), nil
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

// Save replaces the stored catalog in one transaction.
func (d *Database) Save(c *Catalog) error {
	books := c.Books()
	persons := c.Persons()

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM borrowed_books;`,
		`DELETE FROM personnel;`,
		`DELETE FROM books;`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	addBook, err := tx.Prepare(`INSERT INTO books(id,seq,title,author) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer addBook.Close()
	for i, b := range books {
		if _, err := addBook.Exec(b.ID, i, b.Title, b.Author); err != nil {
			return fmt.Errorf("save book %d: %w", b.ID, err)
		}
	}

	addPerson, err := tx.Prepare(`INSERT INTO personnel(id,seq,kind,name,detail) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer addPerson.Close()
	addBorrowed, err := tx.Prepare(`INSERT INTO borrowed_books(person_id,book_id,seq) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer addBorrowed.Close()

	for i, p := range persons {
		if _, err := addPerson.Exec(p.PersonID(), i, string(p.Kind()), p.PersonName(), PersonDetail(p)); err != nil {
			return fmt.Errorf("save person %d: %w", p.PersonID(), err)
		}
		b, ok := p.(*Borrower)
		if !ok {
			continue
		}
		for j, bookID := range b.History() {
			if _, err := addBorrowed.Exec(b.ID, bookID, j); err != nil {
				return fmt.Errorf("save history of person %d: %w", b.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	d.log.Info("catalog saved",
		slog.String("db_file", d.path),
		slog.Int("books", len(books)),
		slog.Int("persons", len(persons)))
	return nil
}
