package bridge

import (
	"context"

	"github.com/leofalp/chatbridge/providers/ai"
)

// StreamFunc opens a stream for a prepared request. It is the unit threaded
// through the middleware chain.
type StreamFunc func(ctx context.Context, req *ai.PreparedRequest) (*ai.DeltaStream, error)

// Middleware intercepts stream requests and may wrap the returned
// DeltaStream to observe or bound it. Middlewares are applied
// outermost-first: the first one in the slice runs first on the way in.
type Middleware func(next StreamFunc) StreamFunc

// buildStreamChain wraps base with middlewares so that middlewares[0] is the
// outermost wrapper.
func buildStreamChain(base StreamFunc, middlewares []Middleware) StreamFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		chain = middlewares[i](chain)
	}
	return chain
}
