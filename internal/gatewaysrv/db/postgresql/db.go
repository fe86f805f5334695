// Package postgresql implements the gateway store on PostgreSQL. It
// expects the user_sessions and activity_log tables to exist; schema
// management happens outside the server.
package postgresql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tradegate/tradegate/internal/common/apperrors"
	"github.com/tradegate/tradegate/internal/gatewaysrv/config"
	"github.com/tradegate/tradegate/internal/gatewaysrv/db/dberror"
)

const (
	maxOpenConns    = 50
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

// connOptions are applied to every pooled connection so a wedged query
// cannot hold the pool hostage. Values are milliseconds.
var connOptions = []string{
	"-c statement_timeout=5000",
	"-c lock_timeout=5000",
	"-c idle_in_transaction_session_timeout=5000",
}

type storeManager struct {
	db *sql.DB
}

// New opens the connection pool and verifies connectivity before the
// server starts accepting requests.
func New(ctx context.Context) (*storeManager, apperrors.Error) {
	dsn := config.Config().DSN() + " options=" + pq.QuoteLiteral(strings.Join(connOptions, " "))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open database")
		return nil, dberror.ErrDatabase.Err(err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	sm := &storeManager{db: db}
	if apperr := sm.pingWithRetry(ctx); apperr != nil {
		db.Close()
		return nil, apperr
	}
	return sm, nil
}

func (sm *storeManager) pingWithRetry(ctx context.Context) apperrors.Error {
	err := retry.Do(func() error {
		return sm.db.PingContext(ctx)
	}, retry.Attempts(3), retry.Delay(1*time.Second), retry.DelayType(retry.BackOffDelay))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("database unreachable")
		return dberror.ErrDatabase.Msg("database unreachable").Err(err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (sm *storeManager) Ping(ctx context.Context) apperrors.Error {
	if err := sm.db.PingContext(ctx); err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}

// Close releases the connection pool.
func (sm *storeManager) Close() error {
	return sm.db.Close()
}
