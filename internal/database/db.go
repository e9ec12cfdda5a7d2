package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

type DB struct {
	*sql.DB
}

type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	ConnMaxIdleTimeMin int
}

// DSN builds the go-sql-driver DSN. Times are parsed into time.Time in UTC.
func (cfg Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = false
	// RowsAffected reports matched rows, not changed rows
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func Connect(cfg Config) (*DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMin) * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to database",
		"host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName,
		"max_open_conns", cfg.MaxOpenConns, "max_idle_conns", cfg.MaxIdleConns,
		"max_lifetime_min", cfg.ConnMaxLifetimeMin, "max_idle_time_min", cfg.ConnMaxIdleTimeMin)

	return &DB{db}, nil
}

// New wraps an already opened handle (tests use it with sqlmock).
func New(db *sql.DB) *DB {
	return &DB{db}
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// WithTx runs fn inside a transaction. fn's error rolls back, nil commits.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MySQL server error numbers the code reacts to.
const (
	ErrCodeDupFieldName    = 1060 // ER_DUP_FIELDNAME
	ErrCodeDupKeyName      = 1061 // ER_DUP_KEYNAME
	ErrCodeDupEntry        = 1062 // ER_DUP_ENTRY
	ErrCodeCantDropField   = 1091 // ER_CANT_DROP_FIELD_OR_KEY
	ErrCodeNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicateColumn reports ER_DUP_FIELDNAME, raised by re-running ADD COLUMN.
func IsDuplicateColumn(err error) bool {
	return mysqlErrorNumber(err) == ErrCodeDupFieldName
}

// IsDuplicateKey reports ER_DUP_KEYNAME, raised by re-running ADD INDEX.
func IsDuplicateKey(err error) bool {
	return mysqlErrorNumber(err) == ErrCodeDupKeyName
}

// IsDuplicateEntry reports a unique constraint violation.
func IsDuplicateEntry(err error) bool {
	return mysqlErrorNumber(err) == ErrCodeDupEntry
}

// IsCantDropField reports ER_CANT_DROP_FIELD_OR_KEY, raised by dropping a missing column.
func IsCantDropField(err error) bool {
	return mysqlErrorNumber(err) == ErrCodeCantDropField
}

// IsMissingReference reports a foreign key pointing to a missing row.
func IsMissingReference(err error) bool {
	return mysqlErrorNumber(err) == ErrCodeNoReferencedRow
}
