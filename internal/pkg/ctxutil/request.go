package ctxutil

import (
	"context"
	"strings"
)

type requestDataKey struct{}

// Default substitutes context.Background for a nil ctx.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// RequestData carries the caller identity supplied by the upstream session layer.
type RequestData struct {
	UserID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the trimmed user id from ctx, or "" when none is attached.
func UserID(ctx context.Context) string {
	rd := GetRequestData(ctx)
	if rd == nil {
		return ""
	}
	return strings.TrimSpace(rd.UserID)
}
