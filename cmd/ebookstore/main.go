package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/maloquacious/ebookstore/internal/console"
	"github.com/maloquacious/ebookstore/internal/inventory"
	"github.com/maloquacious/ebookstore/internal/logger"
	"github.com/maloquacious/ebookstore/internal/store"
	"github.com/maloquacious/ebookstore/internal/store/sqlite"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
)

var (
	version   = semver.Version{Minor: 1, Build: semver.Commit()}
	buildDate = ""
)

var (
	dbPath   string
	logLevel string
	log      logger.Logger = logger.Default
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ebookstore",
		Short: "Bookstore stock manager",
		Long:  "Interactive menu for adding, updating, deleting and searching the bookstore's stock records.",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log = logger.NewStderr(level)
			return nil
		},
		RunE:         runMenu,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", store.GetDBPath(store.GetStorePath()), "path to the stock database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	// db command group
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the stock table and load the starting stock",
		Args:  cobra.NoArgs,
		RunE:  runDBCreate,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema version and report the number of books",
		Args:  cobra.NoArgs,
		RunE:  runDBVerify,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}

	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd)
	rootCmd.AddCommand(dbCmd, versionCmd)
	return rootCmd
}

// openManager opens the store at dbPath and prepares it for use.
// The returned close function must be called when done.
func openManager(ctx context.Context) (*inventory.Manager, func(), error) {
	exists, err := store.CheckExists(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		log.Info("creating %s", dbPath)
	}

	s := sqlite.New(dbPath, store.SchemaVersion)
	if err := s.Open(); err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := s.Close(); err != nil {
			log.Warn("close %s: %v", dbPath, err)
		}
	}

	m := inventory.New(s, log)
	if err := m.Bootstrap(ctx); err != nil {
		closer()
		return nil, nil, fmt.Errorf("prepare %s: %w", dbPath, err)
	}
	return m, closer, nil
}

// runMenu starts the interactive menu loop on stdin/stdout.
func runMenu(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	m, closer, err := openManager(ctx)
	if err != nil {
		return err
	}
	defer closer()

	log.Debug("menu started on %s", dbPath)
	return console.New(m, cmd.InOrStdin(), cmd.OutOrStdout(), log).Run(ctx)
}

func runDBCreate(cmd *cobra.Command, args []string) error {
	m, closer, err := openManager(cmd.Context())
	if err != nil {
		return err
	}
	defer closer()

	n, err := m.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s ready with %d books\n", dbPath, n)
	return nil
}

func runDBVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	exists, err := store.CheckExists(dbPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %s", dbPath, store.StateMissing)
	}

	s := sqlite.New(dbPath, store.SchemaVersion)
	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()

	state, err := s.CheckState(ctx)
	if err != nil {
		return err
	}
	version, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "database: %s\nstate:    %s\nschema:   %q (expected %q)\n", dbPath, state, version, store.SchemaVersion)
	if state != store.StateReady {
		return fmt.Errorf("%s: %s", dbPath, state)
	}

	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "books:    %d\n", n)
	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "ebookstore %s", version.String())
	if buildDate != "" {
		fmt.Fprintf(w, " (built %s)", buildDate)
	}
	fmt.Fprintln(w)
}
