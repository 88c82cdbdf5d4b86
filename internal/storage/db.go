package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DB wraps a SQL connection together with the dialect quirks the stores
// need: placeholder style, column types and upserts.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// Open connects to driver at dsn and runs migrations. For sqlite the dsn is
// a file path.
func Open(driver, dsn string) (*DB, error) {
	switch Dialect(driver) {
	case DialectSQLite:
		return OpenSQLite(dsn)
	case DialectPostgres:
		return open(DialectPostgres, "postgres", dsn)
	case DialectMySQL:
		return open(DialectMySQL, "mysql", mysqlDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// OpenSQLite opens (or creates) the SQLite file at dbPath.
func OpenSQLite(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := open(DialectSQLite, "sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// SQLite only supports one writer
	db.conn.SetMaxOpenConns(1)
	return db, nil
}

func open(dialect Dialect, driverName, dsn string) (*DB, error) {
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	db := &DB{conn: conn, dialect: dialect}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// mysqlDSN makes sure DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an insert that overwrites cols (other than the key) on
// conflict with key.
func (db *DB) upsert(table, key string, cols []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)

	var sets []string
	for _, c := range cols {
		if c == key {
			continue
		}
		if db.dialect == DialectMySQL {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	if db.dialect == DialectMySQL {
		return q + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return q + fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET ", key) + strings.Join(sets, ", ")
}

func (db *DB) migrate() error {
	text, stamp := "TEXT", "TIMESTAMP"
	switch db.dialect {
	case DialectMySQL:
		text, stamp = "LONGTEXT", "DATETIME(6)"
	case DialectSQLite:
		stamp = "DATETIME"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scenes (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			total_pages INTEGER NOT NULL DEFAULT 1,
			node_count INTEGER NOT NULL DEFAULT 0,
			document %s NOT NULL,
			updated_at %s NOT NULL
		)`, text, stamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scene_revisions (
			id VARCHAR(64) PRIMARY KEY,
			scene_id VARCHAR(64) NOT NULL,
			seq INTEGER NOT NULL,
			label VARCHAR(255) NOT NULL,
			node_count INTEGER NOT NULL DEFAULT 0,
			document %s NOT NULL,
			created_at %s NOT NULL
		)`, text, stamp),
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS; a duplicate index error is
	// ignored below.
	migrations = append(migrations, "CREATE INDEX idx_revisions_scene ON scene_revisions(scene_id, seq)")

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			if isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key name")
}
