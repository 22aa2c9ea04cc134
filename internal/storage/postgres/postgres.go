// Package postgres stores editable scenario catalog documents. Only catalog
// YAML lives here; playback runs are never written.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/AaronLay10/InnerVoice/internal/config"
)

// ErrCatalogNotFound is returned when no document is stored under a name.
var ErrCatalogNotFound = errors.New("catalog not found")

// CatalogRow is one stored catalog document.
type CatalogRow struct {
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client manages the Postgres connection for catalog storage.
type Client struct {
	db *sql.DB
}

// ConnString builds a lib/pq connection string from PG* environment
// variables. PGPASSWORD supports the *_FILE convention.
func ConnString() (string, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "innervoice")
	dbname := getEnv("PGDATABASE", "innervoice")
	sslmode := getEnv("PGSSLMODE", "disable")

	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return "", err
	}

	parts := []string{
		"host=" + quote(host),
		"port=" + quote(port),
		"user=" + quote(user),
	}
	if password != "" {
		parts = append(parts, "password="+quote(password))
	}
	parts = append(parts, "dbname="+quote(dbname), "sslmode="+quote(sslmode))
	return strings.Join(parts, " "), nil
}

// quote escapes a keyword/value connection parameter when needed.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// New opens a connection using environment variables and ensures the schema.
func New(ctx context.Context) (*Client, error) {
	connStr, err := ConnString()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{db: db}
	if err := client.createTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create scenario_catalogs table: %w", err)
	}

	return client, nil
}

func (c *Client) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS scenario_catalogs (
			name       TEXT PRIMARY KEY,
			document   TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	_, err := c.db.ExecContext(ctx, query)
	return err
}

// LoadCatalog returns the document stored under name.
func (c *Client) LoadCatalog(ctx context.Context, name string) (*CatalogRow, error) {
	query := `
		SELECT name, document, updated_at
		FROM scenario_catalogs
		WHERE name = $1
	`
	var row CatalogRow
	err := c.db.QueryRowContext(ctx, query, name).Scan(&row.Name, &row.Document, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveCatalog inserts or replaces the document stored under name.
func (c *Client) SaveCatalog(ctx context.Context, name string, document []byte) error {
	query := `
		INSERT INTO scenario_catalogs (name, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`
	_, err := c.db.ExecContext(ctx, query, name, string(document))
	return err
}

// ListCatalogs returns the stored catalog names, most recently updated first.
func (c *Client) ListCatalogs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM scenario_catalogs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
