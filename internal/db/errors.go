package db

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound is returned when the named FT index does not exist.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex for a name already in use.
	ErrIndexExists = errors.New("db: index already exists")
	// ErrUnavailable marks failures to reach the backend at all, as opposed
	// to a command the server rejected.
	ErrUnavailable = errors.New("db: backend unavailable")
)

// Op is the backend command an Error came from.
type Op string

// Commands issued by the stores.
const (
	OpPing        Op = "PING"
	OpHSet        Op = "HSET"
	OpDel         Op = "DEL"
	OpCreateIndex Op = "FT.CREATE"
	OpDropIndex   Op = "FT.DROPINDEX"
	OpIndexInfo   Op = "FT.INFO"
	OpSearch      Op = "FT.SEARCH"
)

// Error records the command, and for per-key commands the key, that failed.
type Error struct {
	Op  Op
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
