package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/darianmavgo/csv2sqlite/config"
	"github.com/darianmavgo/csv2sqlite/converters"
	_ "github.com/darianmavgo/csv2sqlite/converters/all"
	"github.com/darianmavgo/csv2sqlite/converters/common"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time.
var Version = "0.1.0"

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitInput    = 2
	exitConflict = 3
	exitStore    = 4
)

type cliOptions struct {
	configPath string
	table      string
	delimiter  string
	quote      string
	dialect    string
	nullValue  string
	encoding   string
	sheet      string
	noHeader   bool
	trim       bool
	lenient    bool
	force      bool
	batchSize  int
	sqlOut     bool
	schemaOnly bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "csv2sqlite [flags] <input> [output]",
		Short: "Load a CSV file into an SQLite table, inferring column types",
		Long: `csv2sqlite reads a delimited text file, infers an INTEGER, REAL or TEXT
affinity for every column from all of its values, creates one table in an
SQLite database and inserts every row.

The whole input is held in memory while types are inferred. An existing
table of the same name is an error unless --force is given, which drops it.
If an insert fails after earlier batches were committed, the table is left
partially populated and the command exits non-zero.

The output defaults to <input>.db; "-" writes the database (or SQL with
--sql) to stdout. Inputs ending in .gz, .bz2, .xz or .zst are decompressed,
.xlsx inputs are read from a worksheet.`,
		Version:       Version,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "HCL config file")
	flags.StringVarP(&opts.table, "table", "t", "", "table name (default: derived from the input file name)")
	flags.StringVarP(&opts.delimiter, "delimiter", "d", "", `field delimiter: a character, "\t", or "auto"`)
	flags.StringVar(&opts.quote, "quote", "", `quote character (default '"')`)
	flags.StringVar(&opts.dialect, "dialect", "excel", "CSV dialect: excel, excel-tab, unix")
	flags.StringVar(&opts.nullValue, "null", "", "additional value to load as NULL")
	flags.StringVar(&opts.encoding, "encoding", "", "input character encoding (default UTF-8)")
	flags.StringVar(&opts.sheet, "sheet", "", "worksheet to read from .xlsx input (default: first)")
	flags.BoolVar(&opts.noHeader, "no-header", false, "the first row is data; columns are named col_1..col_N")
	flags.BoolVar(&opts.trim, "trim", false, "trim whitespace around fields")
	flags.BoolVar(&opts.lenient, "lenient", false, "pad or truncate rows whose width differs from the header")
	flags.BoolVarP(&opts.force, "force", "f", false, "drop an existing table of the same name")
	flags.IntVar(&opts.batchSize, "batch-size", converters.DefaultBatchSize, "rows per transaction")
	flags.BoolVar(&opts.sqlOut, "sql", false, "write SQL statements instead of a database")
	flags.BoolVar(&opts.schemaOnly, "schema-only", false, "print the inferred schema and exit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	_ = cmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"excel", "excel-tab", "unix"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file, if any, then applies the flags the user set.
func loadConfig(flags *pflag.FlagSet, opts *cliOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("dialect") {
		cfg.Dialect = opts.dialect
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = opts.delimiter
	}
	if flags.Changed("quote") {
		cfg.Quote = opts.quote
	}
	if flags.Changed("null") {
		cfg.NullValue = opts.nullValue
	}
	if flags.Changed("encoding") {
		cfg.Encoding = opts.encoding
	}
	if flags.Changed("no-header") {
		cfg.NoHeader = opts.noHeader
	}
	if flags.Changed("trim") {
		cfg.Trim = opts.trim
	}
	if flags.Changed("lenient") {
		cfg.Lenient = opts.lenient
	}
	if flags.Changed("force") {
		cfg.Overwrite = opts.force
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = opts.batchSize
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *cliOptions, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	inputPath := args[0]
	outputPath := ""
	if len(args) >= 2 {
		outputPath = args[1]
	}

	// A .tsv file is tab separated unless told otherwise.
	if common.FormatExtension(inputPath) == ".tsv" && cfg.Delimiter == "" && !cmd.Flags().Changed("dialect") {
		cfg.Dialect = "excel-tab"
	}

	convCfg, err := cfg.ConversionConfig(logger)
	if err != nil {
		return err
	}
	convCfg.SheetName = opts.sheet
	convCfg.TableName = opts.table
	if convCfg.TableName == "" && inputPath != "-" {
		convCfg.TableName = common.BaseName(inputPath)
	}
	if convCfg.TableName != "" {
		convCfg.TableName = common.GenTableName(convCfg.TableName)
	}

	provider, err := FileToProvider(inputPath, cfg.Encoding, convCfg)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	switch {
	case opts.schemaOnly:
		return printSchema(stdout, provider)
	case opts.sqlOut:
		return exportToSQL(provider, outputPath, stdout)
	}

	if outputPath == "" {
		if inputPath == "-" {
			return errors.New("an output path is required when reading from stdin")
		}
		outputPath = common.RemoveCompressionExtension(inputPath) + ".db"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	importOpts := cfg.ImportOptions(logger)

	if outputPath == "-" {
		return converters.ImportToWriter(ctx, provider, stdout, importOpts)
	}

	// Ensure output directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := converters.ImportToSQLite(ctx, provider, outputPath, importOpts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Successfully converted %s to %s\n", inputPath, outputPath)
	return nil
}

// FileToProvider opens inputPath, picks the converter for its extension and
// reads the whole input.
func FileToProvider(inputPath, encoding string, convCfg *common.ConversionConfig) (common.RowProvider, error) {
	reader, cleanup, err := common.OpenInput(inputPath, encoding)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	provider, err := converters.Open(converters.DriverForPath(inputPath), reader, convCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	return provider, nil
}

func printSchema(w io.Writer, provider common.RowProvider) error {
	for _, tableName := range provider.GetTableNames() {
		if _, err := fmt.Fprintf(w, "%s\n", common.GenCreateTableSQLWithTypes(tableName, provider.GetSchema(tableName))); err != nil {
			return fmt.Errorf("failed to write schema: %w", err)
		}
	}
	return nil
}

// exportToSQL writes SQL statements to outputPath, or to stdout when the
// path is empty or "-".
func exportToSQL(provider common.RowProvider, outputPath string, stdout io.Writer) error {
	if outputPath == "" || outputPath == "-" {
		return converters.ExportSQL(provider, stdout)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := converters.ExportSQL(provider, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// exitCode maps the error taxonomy to process exit codes.
func exitCode(err error) int {
	var (
		parseErr    *common.ParseError
		shapeErr    *common.RowShapeError
		conflictErr *common.SchemaConflictError
		storeErr    *common.StoreWriteError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &parseErr), errors.As(err, &shapeErr), errors.Is(err, common.ErrEmptyInput):
		return exitInput
	case errors.As(err, &conflictErr):
		return exitConflict
	case errors.As(err, &storeErr):
		return exitStore
	default:
		return exitFailure
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
