// Copyright (c) 2026 Katalog. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It separates "no data" from "can't reach storage": the first is a normal
// lookup miss, the second must surface to callers as a distinct error so the
// HTTP layer can answer 503 instead of an empty result.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a queried row doesn't exist.
	ErrNotFound = errors.New("no matching document")

	// ErrUnavailable is returned when the backend cannot be reached in time.
	ErrUnavailable = errors.New("storage backend unavailable")
)

// Wrap inspects a database error and classifies it, prefixing the action for logs.
//
// The result matches [ErrNotFound] or [ErrUnavailable] with errors.Is when
// applicable; the original error always stays in the chain.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}

	// 2. Timeouts and connectivity
	if IsUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
	}

	// 3. Anything else is a genuine query failure
	return fmt.Errorf("%s: %w", action, err)
}

// IsUnavailable reports whether err means the backend could not answer:
// deadline expiry, a failed connection, or a server-side cancel/shutdown.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.QueryCanceled ||
			pgErr.Code == pgerrcode.AdminShutdown ||
			pgErr.Code == pgerrcode.CannotConnectNow
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
