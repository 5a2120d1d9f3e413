package chatmodel

import (
	"context"
	"sync"

	"github.com/effective-security/x/values"
	"github.com/google/uuid"
)

// CallContext carries the correlation data of a single tool invocation,
// it is propagated to the outbound API requests.
type CallContext interface {
	GetRequestID() string
	// GetMetadata retrieves metadata by key
	GetMetadata(key string) (value any, ok bool)
	// SetMetadata sets metadata by key
	SetMetadata(key string, value any)
}

type callContext struct {
	requestID string
	metadata  sync.Map
}

func (c *callContext) GetRequestID() string {
	return c.requestID
}

func (c *callContext) GetMetadata(key string) (value any, ok bool) {
	return c.metadata.Load(key)
}

func (c *callContext) SetMetadata(key string, value any) {
	c.metadata.Store(key, value)
}

// NewCallContext returns CallContext with the provided request ID,
// or a generated one if empty.
func NewCallContext(requestID string) CallContext {
	return &callContext{
		requestID: values.StringsCoalesce(requestID, NewRequestID()),
	}
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithCallContext returns a new context with CallContext value
func WithCallContext(ctx context.Context, callCtx CallContext) context.Context {
	return context.WithValue(ctx, keyContext, callCtx)
}

// GetCallContext retrieves the CallContext from the context
func GetCallContext(ctx context.Context) CallContext {
	if v, ok := ctx.Value(keyContext).(CallContext); ok {
		return v
	}
	return nil
}

// GetRequestID retrieves the request ID from the provided context.
// If the context does not contain a CallContext, it returns an empty string.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(keyContext).(CallContext); ok {
		return v.GetRequestID()
	}
	return ""
}

// EnsureCallContext returns ctx unchanged if it already has a CallContext,
// otherwise a new context with generated request ID.
func EnsureCallContext(ctx context.Context) context.Context {
	if GetCallContext(ctx) != nil {
		return ctx
	}
	return WithCallContext(ctx, NewCallContext(""))
}

func NewRequestID() string {
	return uuid.NewString()
}
