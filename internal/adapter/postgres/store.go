package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/resilience"
)

var _ database.Store = (*Store)(nil)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool    *pgxpool.Pool
	breaker *resilience.Breaker
}

// NewStore creates a new Store backed by the given connection pool. Writes
// go through breaker when it is non-nil; domain errors do not trip it.
func NewStore(pool *pgxpool.Pool, breaker *resilience.Breaker) *Store {
	if breaker != nil {
		breaker.IgnoreErrors(answered)
	}
	return &Store{pool: pool, breaker: breaker}
}

// write runs fn through the circuit breaker.
func (s *Store) write(fn func() error) error {
	if s.breaker == nil {
		return fn()
	}
	return s.breaker.Execute(fn)
}
