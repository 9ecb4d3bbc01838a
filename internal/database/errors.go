package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// IsPermanent reports whether err is a storage failure that will not go
// away by retrying the same statement, such as a constraint violation.
func IsPermanent(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint, sqlite3.ErrMismatch, sqlite3.ErrTooBig, sqlite3.ErrReadonly:
			return true
		}
	}
	return false
}

// IsBusy reports whether err means the database was locked by another
// writer.
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
