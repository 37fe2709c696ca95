package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/config"
	"library-catalog/library"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs once flags and config are resolved.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var overrides struct {
		books, personnel, format, db, logLevel string
	}

	root := &cobra.Command{
		Use:           "library",
		Short:         "Track a small library's books, borrowers and staff",
		Long:          "Interactive console for a library's book inventory and personnel, persisted to flat files or SQLite.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("books") {
				cfg.Storage.BooksFile = overrides.books
			}
			if flags.Changed("personnel") {
				cfg.Storage.PersonnelFile = overrides.personnel
			}
			if flags.Changed("format") {
				cfg.Storage.Format = overrides.format
			}
			if flags.Changed("db") {
				cfg.Storage.DBFile = overrides.db
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = overrides.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			level, _ := config.ParseLevel(cfg.Log.Level)
			a.cfg = cfg
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&overrides.books, "books", "", "books file (LIBRARY_BOOKS_FILE)")
	pf.StringVar(&overrides.personnel, "personnel", "", "personnel file (LIBRARY_PERSONNEL_FILE)")
	pf.StringVar(&overrides.format, "format", "", "storage format: legacy, tagged or sqlite (LIBRARY_FORMAT)")
	pf.StringVar(&overrides.db, "db", "", "SQLite database file (LIBRARY_DB_FILE)")
	pf.StringVar(&overrides.logLevel, "log-level", "", "debug, info, warn or error (LIBRARY_LOG_LEVEL)")

	root.AddCommand(newBooksCmd(a), newPersonnelCmd(a), newConvertCmd(a))

	return root
}

func (a *app) openStore() (library.Store, error) {
	return library.OpenStore(a.cfg.StoreConfig(), a.logger)
}

// runShell loads the catalog, runs the interactive loop and saves on exit.
func (a *app) runShell(in io.Reader, out io.Writer) error {
	logger := a.logger.With(slog.String("session", uuid.NewString()))

	store, err := library.OpenStore(a.cfg.StoreConfig(), logger)
	if err != nil {
		return err
	}
	manager, err := library.NewLibraryManager(store, logger)
	if err != nil {
		store.Close()
		return err
	}

	logger.Debug("shell started")
	newShell(in, out, manager, isTerminal(in)).run()

	if err := manager.Close(); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	logger.Debug("shell finished")
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ------------------ Non-interactive commands ------------------

func newBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadReadOnly()
			if err != nil {
				return err
			}
			printBooks(cmd.OutOrStdout(), c.Books())
			return nil
		},
	}
}

func newPersonnelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "personnel",
		Aliases: []string{"users"},
		Short:   "List all borrowers and staff",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadReadOnly()
			if err != nil {
				return err
			}
			printPersons(cmd.OutOrStdout(), c.Persons())
			return nil
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var target struct {
		format, books, personnel, db string
	}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Copy the catalog into another storage format",
		Long: "Loads the catalog from the configured store and saves it through another one, " +
			"e.g. to migrate legacy files to the tagged format.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := library.ParseFormat(target.format)
			if err != nil {
				return err
			}
			src := a.cfg.StoreConfig()
			dst := library.StoreConfig{
				Format:        format,
				BooksPath:     orDefault(target.books, src.BooksPath),
				PersonnelPath: orDefault(target.personnel, src.PersonnelPath),
				DBPath:        orDefault(target.db, src.DBPath),
			}
			if dst == src {
				return errors.New("source and target store are the same")
			}

			c, err := a.loadReadOnly()
			if err != nil {
				return err
			}
			store, err := library.OpenStore(dst, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d books and %d persons from %s to %s.\n",
				len(c.Books()), len(c.Persons()), src.Format, dst.Format)
			return nil
		},
	}
	cmd.Flags().StringVar(&target.format, "to", string(library.FormatTagged), "target format: legacy, tagged or sqlite")
	cmd.Flags().StringVar(&target.books, "to-books", "", "target books file (default: same as source)")
	cmd.Flags().StringVar(&target.personnel, "to-personnel", "", "target personnel file (default: same as source)")
	cmd.Flags().StringVar(&target.db, "to-db", "", "target SQLite file (default: same as source)")
	return cmd
}

// loadReadOnly loads the catalog without saving it back.
func (a *app) loadReadOnly() (*library.Catalog, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load()
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
