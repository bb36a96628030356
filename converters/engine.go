package converters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/darianmavgo/csv2sqlite/converters/common"

	_ "modernc.org/sqlite"
)

// DefaultBatchSize is the number of rows inserted per transaction.
const DefaultBatchSize = 1000

// ImportOptions defines configuration for the store side of a run.
type ImportOptions struct {
	// Overwrite drops an existing table of the same name. Without it an
	// existing table fails the run with SchemaConflictError.
	Overwrite bool
	// BatchSize is the number of rows committed per transaction.
	BatchSize int
	Logger    *slog.Logger
}

func (o *ImportOptions) normalize() *ImportOptions {
	out := ImportOptions{}
	if o != nil {
		out = *o
	}
	if out.BatchSize <= 0 {
		out.BatchSize = DefaultBatchSize
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// ImportToSQLite writes every table of provider into the SQLite file at
// dbPath, creating the file if needed. Other tables in the file are kept.
//
// Rows are committed in batches of opts.BatchSize. If an insert fails after
// one or more batches were committed, the file keeps a partially populated
// table; the returned StoreWriteError is the only signal of this.
func ImportToSQLite(ctx context.Context, provider common.RowProvider, dbPath string, opts *ImportOptions) (err error) {
	opts = opts.normalize()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	// Limit to 1 connection to avoid locking issues
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA page_size = 65536; PRAGMA cache_size = -2000;"); err != nil {
		return fmt.Errorf("failed to set PRAGMAs: %w", err)
	}

	opts.Logger.Debug("populating database", slog.String("path", dbPath))
	return PopulateDB(ctx, db, provider, opts)
}

// ImportToWriter builds the database in a temporary file and copies the
// finished file to writer. Nothing is written to writer on failure.
func ImportToWriter(ctx context.Context, provider common.RowProvider, writer io.Writer, opts *ImportOptions) error {
	opts = opts.normalize()

	tmpFile, err := os.CreateTemp("", "csv2sqlite-*.db")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	dbPath := tmpFile.Name()
	tmpFile.Close() // Close it so sql.Open can use it
	defer os.Remove(dbPath)

	opts.Logger.Debug("created temp file", slog.String("path", dbPath))
	if err := ImportToSQLite(ctx, provider, dbPath, opts); err != nil {
		return err
	}

	f, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open temp file for reading: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(writer, f); err != nil {
		return fmt.Errorf("failed to write to output: %w", err)
	}
	return nil
}

// PopulateDB creates each table of provider in db and inserts its rows.
func PopulateDB(ctx context.Context, db *sql.DB, provider common.RowProvider, opts *ImportOptions) error {
	opts = opts.normalize()
	for _, tableName := range provider.GetTableNames() {
		if err := populateTable(ctx, db, provider, tableName, opts); err != nil {
			return err
		}
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, common.TableExistsSQL, tableName).Scan(&n); err != nil {
		return false, &common.StoreWriteError{Op: "inspect", Table: tableName, Err: err}
	}
	return n > 0, nil
}

func populateTable(ctx context.Context, db *sql.DB, provider common.RowProvider, tableName string, opts *ImportOptions) error {
	schema := provider.GetSchema(tableName)
	if len(schema) == 0 {
		return fmt.Errorf("table %s has no columns", tableName)
	}

	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return err
	}
	if exists && !opts.Overwrite {
		return &common.SchemaConflictError{Table: tableName}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &common.StoreWriteError{Op: "begin transaction for", Table: tableName, Err: err}
	}
	// Rolling back a committed transaction is a no-op returning ErrTxDone.
	defer func() { _ = tx.Rollback() }()

	if exists {
		opts.Logger.Warn("dropping existing table", slog.String("table", tableName))
		dropSQL, err := common.GenPreparedStmt(tableName, nil, common.DropStmt)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, dropSQL); err != nil {
			return &common.StoreWriteError{Op: "drop", Table: tableName, Err: err}
		}
	}

	createTableSQL := common.GenCreateTableSQLWithTypes(tableName, schema)
	opts.Logger.Debug("creating table", slog.String("table", tableName), slog.String("sql", createTableSQL))
	if _, err := tx.ExecContext(ctx, createTableSQL); err != nil {
		return &common.StoreWriteError{Op: "create", Table: tableName, Err: err}
	}

	insertSQL, err := common.GenPreparedStmt(tableName, schema.Names(), common.InsertStmt)
	if err != nil {
		return fmt.Errorf("failed to generate insert statement for table %s: %w", tableName, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return &common.StoreWriteError{Op: "prepare insert for", Table: tableName, Err: err}
	}

	rowCount, committed := 0, 0
	err = provider.ScanRows(tableName, func(line int, row []any) error {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return &common.StoreWriteError{Op: "insert into", Table: tableName, Line: line, Err: err}
		}

		rowCount++
		if rowCount%opts.BatchSize != 0 {
			return nil
		}
		stmt.Close()
		if err := tx.Commit(); err != nil {
			return &common.StoreWriteError{Op: "commit", Table: tableName, Line: line, Err: err}
		}
		committed = rowCount
		opts.Logger.Debug("committed batch", slog.String("table", tableName), slog.Int("rows", rowCount))

		// Start new transaction
		nextTx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return &common.StoreWriteError{Op: "begin transaction for", Table: tableName, Line: line, Err: err}
		}
		tx = nextTx
		nextStmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			return &common.StoreWriteError{Op: "prepare insert for", Table: tableName, Line: line, Err: err}
		}
		stmt = nextStmt
		return nil
	})
	stmt.Close() // Close statement before commit/rollback
	if err != nil {
		if committed > 0 {
			opts.Logger.Error("table left partially populated",
				slog.String("table", tableName),
				slog.Int("committed_rows", committed))
		}
		var valueErr *common.ValueError
		if errors.As(err, &valueErr) {
			return &common.StoreWriteError{Op: "convert value for", Table: tableName, Line: valueErr.Line, Column: valueErr.Column, Err: valueErr.Err}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &common.StoreWriteError{Op: "commit", Table: tableName, Err: err}
	}
	opts.Logger.Info("table loaded", slog.String("table", tableName), slog.Int("rows", rowCount))
	return nil
}
