package sqlproxy

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"figurevault/internal/logging"
)

// Request is a raw SQL statement with positional parameters
type Request struct {
	Query  string        `json:"query"`
	Params []interface{} `json:"params,omitempty"`
}

// Result mirrors the response shape of the upstream proxy: reads carry rows,
// writes carry affectedRows/lastInsertId, failures carry error only.
type Result struct {
	Success      bool                     `json:"success"`
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	AffectedRows int64                    `json:"affectedRows,omitempty"`
	LastInsertID int64                    `json:"lastInsertId,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

// Proxy forwards raw SQL to an external MySQL database. It exists for
// admin-driven maintenance against the legacy catalog database and is
// disabled entirely when no DSN is configured.
type Proxy struct {
	db     *sql.DB
	logger *logging.Logger
}

// New connects to the external MySQL database
func New(dsn string, logger *logging.Logger) (*Proxy, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return &Proxy{db: db, logger: logger}, nil
}

// Close closes the underlying connection pool
func (p *Proxy) Close() error {
	return p.db.Close()
}

// Execute runs one statement. Errors are reported inside the Result rather
// than returned, matching the wire contract.
func (p *Proxy) Execute(ctx context.Context, req Request) *Result {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &Result{Error: "query is required"}
	}

	p.logger.Debug("Proxying SQL statement", logging.WithField("verb", firstWord(query)))

	if returnsRows(query) {
		return p.query(ctx, query, req.Params)
	}
	return p.exec(ctx, query, req.Params)
}

func (p *Proxy) query(ctx context.Context, query string, params []interface{}) *Result {
	rows, err := p.db.QueryContext(ctx, query, params...)
	if err != nil {
		return &Result{Error: err.Error()}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return &Result{Error: err.Error()}
	}

	result := &Result{Success: true, Rows: []map[string]interface{}{}}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		scanTargets := make([]interface{}, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return &Result{Error: err.Error()}
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// MySQL driver returns []byte for text columns
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return &Result{Error: err.Error()}
	}

	return result
}

func (p *Proxy) exec(ctx context.Context, query string, params []interface{}) *Result {
	res, err := p.db.ExecContext(ctx, query, params...)
	if err != nil {
		return &Result{Error: err.Error()}
	}

	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()

	return &Result{
		Success:      true,
		AffectedRows: affected,
		LastInsertID: lastID,
	}
}

// returnsRows classifies a statement as row-returning. SHOW, DESCRIBE and
// EXPLAIN behave like SELECT on MySQL.
func returnsRows(query string) bool {
	switch firstWord(query) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH":
		return true
	default:
		return false
	}
}

func firstWord(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
