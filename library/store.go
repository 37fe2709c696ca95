package library

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store loads a catalog at startup and saves it at shutdown. A store never
// keeps references to the catalog's records once Load or Save returns.
type Store interface {
	Load() (*Catalog, error)
	Save(c *Catalog) error
	Close() error
}

// Format selects how a catalog is persisted.
type Format string

const (
	// FormatLegacy reads and writes plain unquoted `id,a,b` lines.
	FormatLegacy Format = "legacy"
	// FormatTagged writes quoted CSV with an explicit person kind and history.
	FormatTagged Format = "tagged"
	// FormatSQLite keeps everything in one SQLite database.
	FormatSQLite Format = "sqlite"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatLegacy, FormatTagged, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("unknown storage format %q (want legacy, tagged or sqlite)", s)
}

// StoreConfig names the files backing a store.
type StoreConfig struct {
	Format        Format
	BooksPath     string
	PersonnelPath string
	DBPath        string
}

// OpenStore returns the store for cfg.Format.
func OpenStore(cfg StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Format {
	case FormatSQLite:
		return NewDatabase(cfg.DBPath, logger)
	case FormatLegacy, FormatTagged:
		return NewFileStore(cfg.BooksPath, cfg.PersonnelPath, cfg.Format, logger)
	}
	return nil, fmt.Errorf("unknown storage format %q", cfg.Format)
}

// FileStore keeps books and personnel in two text files.
type FileStore struct {
	booksPath     string
	personnelPath string
	format        Format
	log           *slog.Logger
}

// NewFileStore returns a store over booksPath and personnelPath. The files
// need not exist yet.
func NewFileStore(booksPath, personnelPath string, format Format, logger *slog.Logger) (*FileStore, error) {
	if format != FormatLegacy && format != FormatTagged {
		return nil, fmt.Errorf("file store: unsupported format %q", format)
	}
	if booksPath == "" || personnelPath == "" {
		return nil, errors.New("file store: books and personnel paths are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		booksPath:     booksPath,
		personnelPath: personnelPath,
		format:        format,
		log:           logger.With(slog.String("format", string(format))),
	}, nil
}

func (s *FileStore) Close() error { return nil }

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load reads both files. A missing file is an empty collection. Records that
// fail to parse or repeat an id are logged and skipped.
func (s *FileStore) Load() (*Catalog, error) {
	c := NewCatalog()

	books, err := s.scan(s.booksPath, func(pos int, raw string, rec []string) error {
		b, err := s.decodeBook(raw, rec)
		if err != nil {
			return err
		}
		return c.AddBook(b)
	})
	if err != nil {
		return nil, err
	}

	persons, err := s.scan(s.personnelPath, func(pos int, raw string, rec []string) error {
		p, err := s.decodePerson(raw, rec)
		if err != nil {
			return err
		}
		return c.AddPerson(p)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("catalog loaded",
		slog.String("books_file", s.booksPath),
		slog.Int("books", books),
		slog.String("personnel_file", s.personnelPath),
		slog.Int("persons", persons))
	return c, nil
}

func (s *FileStore) decodeBook(raw string, rec []string) (Book, error) {
	if s.format == FormatLegacy {
		return DeserializeBook(raw)
	}
	return BookFromRecord(rec)
}

func (s *FileStore) decodePerson(raw string, rec []string) (Person, error) {
	if s.format == FormatLegacy {
		return DeserializePerson(raw)
	}
	return PersonFromRecord(rec)
}

// scan calls fn for every record in path and returns how many were accepted.
// fn errors skip the record; only I/O errors abort.
func (s *FileStore) scan(path string, fn func(pos int, raw string, rec []string) error) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("data file missing, starting empty", slog.String("path", path))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	accepted := 0
	handle := func(pos int, raw string, rec []string) {
		if err := fn(pos, raw, rec); err != nil {
			s.log.Warn("skipping record",
				slog.String("path", path),
				slog.Int("line", pos),
				slog.String("error", err.Error()))
			return
		}
		accepted++
	}

	if s.format == FormatLegacy {
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for pos := 1; sc.Scan(); pos++ {
			line := strings.TrimRight(sc.Text(), "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			handle(pos, line, nil)
		}
		if err := sc.Err(); err != nil {
			return accepted, fmt.Errorf("read %s: %w", path, err)
		}
		return accepted, nil
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			s.log.Warn("skipping record",
				slog.String("path", path),
				slog.Int("line", perr.StartLine),
				slog.String("error", fmt.Errorf("%w: %v", ErrMalformedRecord, perr.Err).Error()))
			continue
		}
		if err != nil {
			return accepted, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		handle(line, "", rec)
	}
	return accepted, nil
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

// Save replaces both files with the catalog contents, one record per line in
// catalog order. Each file is written to a temporary sibling and renamed over
// the original.
func (s *FileStore) Save(c *Catalog) error {
	books := c.Books()
	persons := c.Persons()

	if err := writeAtomic(s.booksPath, func(w io.Writer) error {
		for _, b := range books {
			if _, err := fmt.Fprintln(w, s.encodeBook(b)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("save books: %w", err)
	}

	if err := writeAtomic(s.personnelPath, func(w io.Writer) error {
		for _, p := range persons {
			if _, err := fmt.Fprintln(w, s.encodePerson(p)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("save personnel: %w", err)
	}

	s.log.Info("catalog saved",
		slog.String("books_file", s.booksPath),
		slog.Int("books", len(books)),
		slog.String("personnel_file", s.personnelPath),
		slog.Int("persons", len(persons)))
	return nil
}

func (s *FileStore) encodeBook(b Book) string {
	if s.format == FormatLegacy {
		return b.Serialize()
	}
	return MarshalTagged(BookRecord(b))
}

func (s *FileStore) encodePerson(p Person) string {
	if s.format == FormatLegacy {
		return SerializePerson(p)
	}
	return MarshalTagged(PersonRecord(p))
}

// writeAtomic writes path+".tmp" and renames it over path.
func writeAtomic(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
