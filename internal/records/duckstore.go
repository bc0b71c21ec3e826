// duckstore.go - DuckDB-backed conversion history
package records

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"

	"github.com/cobol-converter/backend/internal/models"
)

// Options tunes the DuckDB connection.
type Options struct {
	Threads     int
	MemoryLimit string
}

// DuckStore stores conversions in a DuckDB database file.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

var _ Store = (*DuckStore)(nil)

// NewDuckStore opens (or creates) the database at dbPath.
func NewDuckStore(dbPath string, opts Options) (*DuckStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating records directory: %w", err)
	}

	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", strings.ReplaceAll(opts.MemoryLimit, "'", "")))
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS conversions (
			id          VARCHAR PRIMARY KEY,
			file_id     VARCHAR NOT NULL,
			file_name   VARCHAR NOT NULL,
			uploaded_at TIMESTAMP NOT NULL,
			method      VARCHAR NOT NULL,
			cobol_code  VARCHAR NOT NULL,
			java_code   VARCHAR NOT NULL,
			logs        VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	log.Infof("[Records] Using database at %s", dbPath)
	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Insert stores c, assigning an ID and upload time when they are unset.
func (s *DuckStore) Insert(ctx context.Context, c *models.Conversion) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.UploadedAt.IsZero() {
		c.UploadedAt = time.Now()
	}
	c.UploadedAt = c.UploadedAt.UTC().Truncate(time.Microsecond)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, file_id, file_name, uploaded_at, method, cobol_code, java_code, logs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FileID, c.FileName, c.UploadedAt, string(c.Method), c.CobolCode, c.JavaCode, joinLogs(c.Logs),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion: %w", err)
	}
	return nil
}

// Get returns the conversion with the given ID.
func (s *DuckStore) Get(ctx context.Context, id string) (*models.Conversion, error) {
	var (
		c      models.Conversion
		method string
		logs   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_id, file_name, uploaded_at, method, cobol_code, java_code, logs
		 FROM conversions WHERE id = ?`, id,
	).Scan(&c.ID, &c.FileID, &c.FileName, &c.UploadedAt, &method, &c.CobolCode, &c.JavaCode, &logs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversion: %w", err)
	}
	c.Method = models.ConversionMethod(method)
	c.Logs = splitLogs(logs)
	return &c, nil
}

// List returns the most recent conversions first.
func (s *DuckStore) List(ctx context.Context, limit int) ([]models.ConversionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, uploaded_at, method FROM conversions
		 ORDER BY uploaded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	list := make([]models.ConversionSummary, 0)
	for rows.Next() {
		var (
			sum    models.ConversionSummary
			method string
		)
		if err := rows.Scan(&sum.ID, &sum.FileName, &sum.UploadedAt, &method); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		sum.Method = models.ConversionMethod(method)
		list = append(list, sum)
	}
	return list, rows.Err()
}

// Delete removes a conversion.
func (s *DuckStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting conversion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *DuckStore) Close() error {
	return s.db.Close()
}

// Logs are stored as a JSON array so entries may span lines.
func joinLogs(logs []string) string {
	if logs == nil {
		logs = []string{}
	}
	data, _ := json.Marshal(logs)
	return string(data)
}

// splitLogs also reads rows written as newline-joined text.
func splitLogs(logs string) []string {
	if logs == "" {
		return []string{}
	}
	var entries []string
	if strings.HasPrefix(logs, "[") && json.Unmarshal([]byte(logs), &entries) == nil {
		return entries
	}
	return strings.Split(logs, "\n")
}
