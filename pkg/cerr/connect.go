package cerr

import (
	"context"

	"connectrpc.com/connect"
)

type convertConnectErrorInterceptor struct{}

// NewConvertConnectErrorInterceptor lets handlers return plain *Error values;
// they are converted to *connect.Error on the way out.
func NewConvertConnectErrorInterceptor() connect.Interceptor {
	return &convertConnectErrorInterceptor{}
}

func (i *convertConnectErrorInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		resp, err := next(ctx, req)
		if req.Spec().IsClient {
			return resp, err
		}
		return resp, ExtractConnectError(ctx, err)
	}
}

func (i *convertConnectErrorInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *convertConnectErrorInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		return ExtractConnectError(ctx, next(ctx, conn))
	}
}
