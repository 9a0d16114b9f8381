package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// From wraps ctx without a transaction.
func From(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx}
}

// DB returns the transaction when present, otherwise fallback, bound to the request context.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Tx != nil {
		return c.Tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
