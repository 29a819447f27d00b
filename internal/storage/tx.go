package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type txKey struct{}

// Conn returns the transaction carried by ctx, or the pool when there is none.
// Repositories go through Conn so the same method works inside and outside
// WithKeyLock.
func (p *Postgres) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return p.DB.WithContext(ctx)
}

// WithKeyLock runs fn in a transaction holding a transaction-scoped advisory
// lock on key. Callers that use the same key are serialized until commit, so
// a read followed by a write inside fn cannot interleave with another one.
func (p *Postgres) WithKeyLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return p.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return fmt.Errorf("advisory lock: %w", err)
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
