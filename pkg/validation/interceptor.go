package validation

import (
	"context"

	"connectrpc.com/connect"
)

type interceptor struct{}

// NewInterceptor validates every inbound unary request message before the
// handler runs. Streaming requests are validated on first receive by the
// handler itself.
func NewInterceptor() connect.Interceptor {
	return &interceptor{}
}

func (i *interceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		if err := Struct(req.Any()); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *interceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *interceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
