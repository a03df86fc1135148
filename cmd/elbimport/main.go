// elbimport loads load balancer access logs into a SQL table.
//
// Usage:
//
//	elbimport -dir ./logs -table elb_logs -db logs -user loader -W -create
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/term"

	"elbimport/internal/config"
	"elbimport/internal/importer"
	"elbimport/internal/record"
	"elbimport/internal/sqlgen"
	"elbimport/internal/storage"
	mysqlstore "elbimport/internal/storage/mysql"

	// Register every storage backend; -storage picks one at runtime.
	_ "elbimport/internal/storage/all"
)

// Version is set at build time.
var Version = "dev"

// RunConfig is everything run needs from the process, so tests can drive it.
type RunConfig struct {
	Stdout io.Writer
	Stderr io.Writer
	Args   []string

	// LookupEnv reads ELBIMPORT_* variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// ReadPassword backs -W. Defaults to reading the terminal without echo.
	ReadPassword func() ([]byte, error)
}

// DefaultRunConfig wires RunConfig to the real process.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		ReadPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
}

// cliOptions are the flags that steer the command rather than the import.
type cliOptions struct {
	configPath     string
	envFile        string
	printDDL       bool
	validate       bool
	verbose        bool
	promptPassword bool
}

// UsageWriter writes usage information to w.
func UsageWriter(w io.Writer, progName string, fs *flag.FlagSet) {
	fmt.Fprintf(w, "elbimport %s - import load balancer access logs into SQL\n\n", Version)
	fmt.Fprintf(w, "Usage: %s -dir DIR -table NAME [OPTIONS]\n\n", progName)
	fmt.Fprintf(w, "Options:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  # Create the table and import into MySQL, prompting for the password\n")
	fmt.Fprintf(w, "  %s -dir ./logs -table elb_logs -db logs -user loader -W -create\n\n", progName)
	fmt.Fprintf(w, "  # Import into a local SQLite file\n")
	fmt.Fprintf(w, "  %s -dir ./logs -table elb_logs -storage sqlite -dsn elb.db -create\n\n", progName)
	fmt.Fprintf(w, "  # Print the statements that would run\n")
	fmt.Fprintf(w, "  %s -dir ./logs -table elb_logs -storage dryrun\n", progName)
}

// parseFlags binds flags into fl (import settings) and opts (command
// settings). Only flags that were actually set override other sources; see
// overlayFlags.
func parseFlags(args []string, stderr io.Writer, fl *config.Config, opts *cliOptions) (*flag.FlagSet, error) {
	fs := flag.NewFlagSet("elbimport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&fl.Dir, "dir", "", "Directory containing *.log files")
	fs.StringVar(&fl.Table, "table", "", "Target table name")
	fs.StringVar(&fl.Database, "db", "", "MySQL database name")
	fs.StringVar(&fl.Host, "host", "", "MySQL host[:port] (default localhost:3306)")
	fs.StringVar(&fl.User, "user", "", "MySQL user")
	fs.StringVar(&fl.Password, "password", "", "Database password (alternative to -W prompt)")
	fs.BoolVar(&opts.promptPassword, "W", false, "Prompt for password")
	fs.StringVar(&fl.Storage, "storage", "", "Storage backend: mysql, sqlite, postgres, mssql, dryrun (default mysql)")
	fs.StringVar(&fl.DSN, "dsn", "", "Backend DSN; for dryrun the dialect to render")
	fs.BoolVar(&fl.Create, "create", false, "Create the table if it does not exist")
	fs.BoolVar(&fl.Drop, "drop", false, "Drop and recreate the table (implies -create)")
	fs.StringVar(&fl.Timezone, "timezone", "", "IANA zone timestamps are stored in (default UTC)")
	fs.BoolVar(&fl.StrictTime, "strict-time", false, "Reject unparseable timestamps instead of storing 1970-01-01 00:00:01 UTC")
	fs.StringVar(&fl.OnError, "on-error", "", "Malformed line policy: abort or skip (default abort)")
	fs.BoolVar(&fl.LazyQuotes, "lazy-quotes", false, "Accept bare quotes inside fields")
	fs.StringVar(&fl.MetricsBackend, "metrics-backend", "", "Metrics backend: none or datadog")
	fs.StringVar(&fl.MetricsTags, "metrics-tags", "", "Extra comma-separated Datadog tags")

	fs.StringVar(&opts.configPath, "config", "", "JSON config file")
	fs.StringVar(&opts.envFile, "env-file", "", "File with ELBIMPORT_* variables (default .env if present)")
	fs.BoolVar(&opts.printDDL, "print-ddl", false, "Print CREATE TABLE for the selected storage and exit")
	fs.BoolVar(&opts.validate, "validate", false, "Validate the configuration and exit")
	fs.BoolVar(&opts.verbose, "v", false, "Enable verbose logs")

	fs.Usage = func() {
		UsageWriter(stderr, "elbimport", fs)
	}

	if err := fs.Parse(args); err != nil {
		return fs, err
	}
	return fs, nil
}

// overlayFlags copies explicitly set flags from fl onto cfg.
func overlayFlags(fs *flag.FlagSet, fl config.Config, cfg *config.Config) {
	set := map[string]func(){
		"dir":             func() { cfg.Dir = fl.Dir },
		"table":           func() { cfg.Table = fl.Table },
		"db":              func() { cfg.Database = fl.Database },
		"host":            func() { cfg.Host = fl.Host },
		"user":            func() { cfg.User = fl.User },
		"password":        func() { cfg.Password = fl.Password },
		"storage":         func() { cfg.Storage = fl.Storage },
		"dsn":             func() { cfg.DSN = fl.DSN },
		"create":          func() { cfg.Create = fl.Create },
		"drop":            func() { cfg.Drop = fl.Drop },
		"timezone":        func() { cfg.Timezone = fl.Timezone },
		"strict-time":     func() { cfg.StrictTime = fl.StrictTime },
		"on-error":        func() { cfg.OnError = fl.OnError },
		"lazy-quotes":     func() { cfg.LazyQuotes = fl.LazyQuotes },
		"metrics-backend": func() { cfg.MetricsBackend = fl.MetricsBackend },
		"metrics-tags":    func() { cfg.MetricsTags = fl.MetricsTags },
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := set[f.Name]; ok {
			apply()
		}
	})
}

// loadConfig resolves defaults < config file < environment < flags.
func loadConfig(rc RunConfig, fs *flag.FlagSet, fl config.Config, opts cliOptions) (config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return config.Config{}, err
	}

	cfg := config.Defaults()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configPath); err != nil {
			return cfg, err
		}
	}

	lookup := rc.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}

	overlayFlags(fs, fl, &cfg)
	cfg.Normalize()
	return cfg, nil
}

// run is the main entry point logic, separated for testability.
func run(rc RunConfig) int {
	var (
		fl   config.Config
		opts cliOptions
	)
	fs, err := parseFlags(rc.Args, rc.Stderr, &fl, &opts)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if fs.NFlag() == 0 && len(rc.Args) == 0 {
		UsageWriter(rc.Stderr, "elbimport", fs)
		return 0
	}

	cfg, err := loadConfig(rc, fs, fl, opts)
	if err != nil {
		fmt.Fprintf(rc.Stderr, "Error loading configuration: %s\n", err)
		return 1
	}

	if opts.printDDL {
		return printDDL(rc, cfg)
	}

	issues := cfg.Validate()
	for _, iss := range issues {
		fmt.Fprintln(rc.Stderr, iss.String())
	}
	if err := config.Err(issues); err != nil {
		return 1
	}
	if opts.validate {
		fmt.Fprintln(rc.Stdout, "configuration is valid")
		return 0
	}

	if opts.promptPassword && cfg.Password == "" {
		pw, err := promptPassword(rc, cfg.User)
		if err != nil {
			fmt.Fprintf(rc.Stderr, "Error reading password: %s\n", err)
			return 1
		}
		cfg.Password = pw
	}

	runID := uuid.NewString()
	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(rc.Stderr, "run_id="+runID+" ", log.LstdFlags)
	}

	closeMetrics := setupMetrics(cfg, runID, logger)
	defer closeMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := importDir(ctx, rc, cfg, logger); err != nil {
		fmt.Fprintf(rc.Stderr, "\nError: %s\n", err)
		return 1
	}
	return 0
}

func importDir(ctx context.Context, rc RunConfig, cfg config.Config, logger *log.Logger) error {
	model, err := cfg.Model()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	dec, err := record.NewDecoder(model, record.WithLocation(loc), record.WithStrictTime(cfg.StrictTime))
	if err != nil {
		return err
	}

	// dryrun writes SQL to stdout, so the status line moves to stderr.
	statusOut := rc.Stdout
	if cfg.Storage == "dryrun" {
		statusOut = rc.Stderr
	}

	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage, DSN: storageDSN(cfg), Out: rc.Stdout})
	if err != nil {
		return err
	}
	defer repo.Close()

	policy := importer.Abort
	if cfg.OnError == config.OnErrorSkip {
		policy = importer.Skip
	}

	im := &importer.Importer{
		Repo:    repo,
		Decoder: dec,
		Table:   cfg.Table,
		Drop:    cfg.Drop,
		Create:  cfg.Create,
		OnError: policy,
		Logger:  logger,
		Status:  statusOut,
	}
	im.Reader.LazyQuotes = cfg.LazyQuotes

	logger.Printf("import: dir=%s storage=%s table=%s timezone=%s on_error=%s", cfg.Dir, cfg.Storage, cfg.Table, loc, cfg.OnError)

	sum, err := im.Run(ctx, cfg.Dir)
	logger.Printf("summary: files=%d records=%s rejected=%s duration=%s",
		sum.Files, humanize.Comma(sum.Records), humanize.Comma(sum.Rejected), sum.Duration.Truncate(time.Millisecond))
	return err
}

// storageDSN builds the MySQL DSN from its parts unless one was given.
func storageDSN(cfg config.Config) string {
	if cfg.Storage == "mysql" && cfg.DSN == "" {
		return mysqlstore.BuildDSN(cfg.Host, cfg.User, cfg.Password, cfg.Database)
	}
	return cfg.DSN
}

func printDDL(rc RunConfig, cfg config.Config) int {
	if cfg.Table == "" {
		fmt.Fprintln(rc.Stderr, "Error: -print-ddl needs -table")
		return 1
	}
	model, err := cfg.Model()
	if err != nil {
		fmt.Fprintf(rc.Stderr, "Error: %s\n", err)
		return 1
	}
	d, err := dialectFor(cfg)
	if err != nil {
		fmt.Fprintf(rc.Stderr, "Error: %s\n", err)
		return 1
	}
	fmt.Fprintln(rc.Stdout, sqlgen.CreateTable(d, cfg.Table, model))
	return 0
}

// dialectFor resolves the SQL dialect of cfg.Storage without connecting.
// The dryrun backend never connects, so it doubles as the dialect table.
func dialectFor(cfg config.Config) (sqlgen.Dialect, error) {
	dsn := cfg.Storage
	if cfg.Storage == "dryrun" {
		dsn = cfg.DSN
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "dryrun", DSN: dsn, Out: io.Discard})
	if err != nil {
		return nil, err
	}
	defer repo.Close()
	return repo.Dialect(), nil
}

func promptPassword(rc RunConfig, user string) (string, error) {
	if rc.ReadPassword == nil {
		return "", errors.New("no terminal available for -W")
	}
	fmt.Fprintf(rc.Stderr, "Password for user %s: ", user)
	pw, err := rc.ReadPassword()
	fmt.Fprintln(rc.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func main() {
	rc := DefaultRunConfig()
	rc.Args = os.Args[1:]
	os.Exit(run(rc))
}
