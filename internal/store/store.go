package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

func init() {
	// modernc's driver registers as "sqlite", which sqlx doesn't know about.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store is the single durable source of truth: issued keys, the append-only
// usage log, user profiles, and admin accounts. All four tables are mutated
// only by insert; uniqueness constraints serialize conflicting writes, so no
// in-process locking is needed.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the backing database and runs migrations. Driver is one of
// sqlite, postgres, or mysql. For mysql the DSN must include parseTime=true.
func Open(driver, dsn string) (*Store, error) {
	sqlDriver := driver
	if driver == DriverPostgres {
		sqlDriver = "pgx"
	}

	db, err := sqlx.Connect(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// OpenSQLite opens a file-backed SQLite store under dataDir, or an in-memory
// store when dataDir is empty.
func OpenSQLite(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "apikeys.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	return Open(DriverSQLite, dsn)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// now returns the current UTC time at second precision. SQLite compares
// DATETIME values as text, so every stored timestamp must share one format.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// insertID runs an INSERT and returns the generated row id. Postgres has no
// LastInsertId, so the query grows a RETURNING clause there.
func (s *Store) insertID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ---------------------------------------------------------------------------
// API keys (write-once, read-many)
// ---------------------------------------------------------------------------

// CreateAPIKey persists a freshly generated key. The ID and CreatedAt fields
// are populated after a successful insert. Returns ErrConflict if the secret
// already exists.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	key.CreatedAt = now()

	id, err := s.insertID(ctx,
		"INSERT INTO api_keys ("+s.quote("key")+", created_at) VALUES (?, ?)",
		key.Key, key.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	key.ID = id
	return nil
}

// GetAPIKeyBySecret looks up a key by its exact secret value. A miss returns
// ErrNotFound.
func (s *Store) GetAPIKeyBySecret(ctx context.Context, secret string) (*model.APIKey, error) {
	var key model.APIKey
	q := s.db.Rebind("SELECT id, " + s.quote("key") + " AS " + s.quote("key") +
		", created_at FROM api_keys WHERE " + s.quote("key") + " = ?")
	if err := s.db.GetContext(ctx, &key, q, secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	return &key, nil
}

// ListAPIKeys returns all issued keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	q := "SELECT id, " + s.quote("key") + " AS " + s.quote("key") +
		", created_at FROM api_keys ORDER BY created_at DESC, id DESC"
	if err := s.db.SelectContext(ctx, &keys, q); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// ---------------------------------------------------------------------------
// Usage log (append-only)
// ---------------------------------------------------------------------------

// InsertUsageEvent appends one validation event for a key. checkedAt is
// normalized to UTC second precision; the zero value means "now".
func (s *Store) InsertUsageEvent(ctx context.Context, keyID int64, checkedAt time.Time) error {
	if checkedAt.IsZero() {
		checkedAt = now()
	} else {
		checkedAt = checkedAt.UTC().Truncate(time.Second)
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("INSERT INTO api_usage_log (api_key_id, checked_at) VALUES (?, ?)"),
		keyID, checkedAt)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// CountUsageEvents returns the number of recorded validations for a key.
func (s *Store) CountUsageEvents(ctx context.Context, keyID int64) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		s.db.Rebind("SELECT COUNT(*) FROM api_usage_log WHERE api_key_id = ?"), keyID)
	if err != nil {
		return 0, fmt.Errorf("count usage events: %w", err)
	}
	return count, nil
}

// HasUsageSince reports whether the key has at least one usage event with
// checked_at at or after the cutoff. The boundary is inclusive.
func (s *Store) HasUsageSince(ctx context.Context, keyID int64, cutoff time.Time) (bool, error) {
	cutoff = cutoff.UTC().Truncate(time.Second)

	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(
		`SELECT EXISTS (
			SELECT 1 FROM api_usage_log
			WHERE api_key_id = ? AND checked_at >= ?
		)`), keyID, cutoff)
	if err != nil {
		return false, fmt.Errorf("check usage since: %w", err)
	}
	return exists, nil
}

// DashboardRows returns every user profile joined with its key and a derived
// online/offline status. Status is computed entirely from the usage log; the
// key's own created_at never participates.
func (s *Store) DashboardRows(ctx context.Context, cutoff time.Time) ([]model.UserKeyStatus, error) {
	cutoff = cutoff.UTC().Truncate(time.Second)

	q := `SELECT u.first_name, u.last_name, u.email, k.` + s.quote("key") + ` AS ` + s.quote("key") + `,
		CASE WHEN EXISTS (
			SELECT 1 FROM api_usage_log l
			WHERE l.api_key_id = k.id AND l.checked_at >= ?
		) THEN 'online' ELSE 'offline' END AS status
		FROM users u
		JOIN api_keys k ON u.api_key_id = k.id
		ORDER BY u.id`

	var rows []model.UserKeyStatus
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), cutoff); err != nil {
		return nil, fmt.Errorf("dashboard rows: %w", err)
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// CreateUser saves an end-user profile bound to an existing key. Returns
// ErrConflict on duplicate email.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	user.CreatedAt = now()

	id, err := s.insertID(ctx,
		`INSERT INTO users (first_name, last_name, email, api_key_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Email, user.APIKeyID, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return nil
}

// ---------------------------------------------------------------------------
// Admins
// ---------------------------------------------------------------------------

// CreateAdmin inserts a new admin account. Returns ErrConflict on duplicate
// email.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.CreatedAt = now()

	id, err := s.insertID(ctx,
		"INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)",
		admin.Email, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	admin.ID = id
	return nil
}

// GetAdminByEmail returns an admin by email address.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := s.db.GetContext(ctx, &admin,
		s.db.Rebind("SELECT id, email, password_hash, created_at FROM admins WHERE email = ?"),
		email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins,
		"SELECT id, email, password_hash, created_at FROM admins ORDER BY email"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. Used for
// first-run detection at server start.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// ---------------------------------------------------------------------------
// Driver quirks
// ---------------------------------------------------------------------------

// quote wraps an identifier for the current driver. Only needed because the
// original schema named its secret column "key", a reserved word in MySQL.
func (s *Store) quote(ident string) string {
	if s.driver == DriverMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// isUniqueViolation matches uniqueness-constraint errors across the three
// engines by message, the same way handler-level DB error classification
// does. None of the drivers share an error type to switch on.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// isDuplicateObject matches "already exists" errors from idempotent reruns of
// DDL (MySQL index creation).
func isDuplicateObject(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists")
}
