// Package cli provides the command-line host for the discovery engine.
// The CLI is a control interface; the engine itself has no CLI, HTTP, or
// environment surface of its own.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lakescan-io/lakescan/internal/config"
	"github.com/lakescan-io/lakescan/internal/errors"
	"github.com/lakescan-io/lakescan/internal/objectstore"
	"github.com/lakescan-io/lakescan/internal/storage"
)

// Exit codes, mapped from the error taxonomy.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitDetection  = 2
	ExitRead       = 3
	ExitInternal   = 4
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config

	// Global flags
	configPath string
	output     string
	quiet      bool
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lakescan: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeValidation:
		return ExitValidation
	case errors.CodeDetection:
		return ExitDetection
	case errors.CodeRead:
		return ExitRead
	default:
		return ExitInternal
	}
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lakescan",
		Short: "Lakescan - Lakehouse Metadata Discovery",
		Long: `Lakescan discovers lakehouse tables in object storage.

Given an object-store URI it identifies the table format (Iceberg, Delta,
Hudi, or plain Parquet), reads that format's on-disk metadata, and projects
it into a format-neutral catalog that downstream tools query without
knowing the underlying format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.lakescan/config.yaml)")
	cmd.PersistentFlags().StringVarP(&c.output, "output", "o", "text", "output format: text, json, yaml")
	cmd.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(
		c.newDiscoverCmd(),
		c.newInspectCmd(),
		c.newTableCmd(),
		c.newFormatsCmd(),
		c.newDoctorCmd(),
		c.newVersionCmd(),
	)

	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// openCatalog opens the metadata catalog per configuration and runs
// pending migrations. The caller owns the returned handle.
func (c *CLI) openCatalog(cmd *cobra.Command) (*sql.DB, *storage.SQLStore, error) {
	var (
		db      *sql.DB
		dialect storage.Dialect
		err     error
	)
	switch c.cfg.Database.Driver {
	case "postgres":
		dialect = storage.DialectPostgres
		db, err = sql.Open("postgres", c.cfg.Database.DSN())
	default:
		dialect = storage.DialectSQLite
		db, err = sql.Open("sqlite", c.cfg.Database.Path)
	}
	if err != nil {
		return nil, nil, errors.NewStorageBackend("open", err)
	}

	if err := storage.NewMigrationRunner(db, dialect).Run(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, storage.NewSQLStore(db, dialect), nil
}

// objectStoreFor resolves an object-store handle for the URI's bucket.
func (c *CLI) objectStoreFor(rawURI string) (objectstore.ObjectStore, objectstore.URI, error) {
	uri, err := objectstore.ParseURI(rawURI)
	if err != nil {
		return nil, objectstore.URI{}, errors.NewInvalidMetadata("location", err.Error())
	}
	store, err := objectstore.NewS3Store(objectstore.S3Config{
		Endpoint:  c.cfg.ObjectStore.Endpoint,
		AccessKey: c.cfg.ObjectStore.AccessKey,
		SecretKey: c.cfg.ObjectStore.SecretKey,
		Region:    c.cfg.ObjectStore.Region,
		UseSSL:    c.cfg.ObjectStore.UseSSL,
	}, uri.Bucket, nil)
	if err != nil {
		return nil, objectstore.URI{}, errors.NewStorageBackend("objectstore", err)
	}
	return store, uri, nil
}
