package sqlstore

import (
	"context"

	"github.com/uptrace/bun"
)

type txContextKey struct{}

// WithTx returns a context carrying the transactional connection. Store
// methods resolve it ahead of the root database.
func WithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFromContext(ctx context.Context) (bun.Tx, bool) {
	if ctx == nil {
		return bun.Tx{}, false
	}
	tx, ok := ctx.Value(txContextKey{}).(bun.Tx)
	return tx, ok
}

// conn resolves the connection for one store call: the context transaction
// when the caller opened one, the root database otherwise.
func conn(ctx context.Context, db *bun.DB) bun.IDB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}
