package db

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// DB wraps sqlx.DB to provide database operations
type DB struct {
	*sqlx.DB
}

// New creates a new DB instance
func New(sqlxDB *sqlx.DB) *DB {
	return &DB{DB: sqlxDB}
}

// Connect opens a MySQL connection pool and verifies it with a ping
func Connect(dsn string) (*DB, error) {
	sqlxDB, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	sqlxDB.SetMaxOpenConns(20)
	sqlxDB.SetMaxIdleConns(5)
	sqlxDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlxDB.Ping(); err != nil {
		return nil, err
	}

	return New(sqlxDB), nil
}

// WithTx executes a function within a transaction. The error result is named
// so the deferred commit's failure propagates to the caller.
func (db *DB) WithTx(fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}
