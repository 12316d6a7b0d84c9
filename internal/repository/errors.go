package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable wraps any failure talking to the database.
var ErrStoreUnavailable = errors.New("store unavailable")

// storeErr maps pgx errors onto the repository sentinels. The driver error is
// kept in the chain so handlers can surface its text for diagnostics.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
