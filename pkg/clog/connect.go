package clog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"
)

type connectConfig struct {
	Filter func(spec connect.Spec) bool
}

type ConnectOption func(*connectConfig)

func WithConnectFilter(filter func(connect.Spec) bool) ConnectOption {
	return func(cfg *connectConfig) {
		cfg.Filter = filter
	}
}

func DefaultConnectHealthCheckFilter(spec connect.Spec) bool {
	return spec.Procedure != "/grpc.health.v1.Health/Check"
}

type slogConnectInterceptor struct {
	cfg connectConfig
}

// NewSlogConnectInterceptor logs one record per unary call and one pair of
// records (connected, finished) per handler stream.
func NewSlogConnectInterceptor(opts ...ConnectOption) connect.Interceptor {
	cfg := connectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &slogConnectInterceptor{cfg: cfg}
}

func (s *slogConnectInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		start := time.Now()
		ctx = ContextWithSlog(ctx)
		AddAttributes(ctx, map[string]any{
			"method":      req.HTTPMethod(),
			"procedure":   req.Spec().Procedure,
			"stream_type": req.Spec().StreamType.String(),
		})
		resp, err := next(ctx, req)
		if s.cfg.Filter != nil && !s.cfg.Filter(req.Spec()) {
			return resp, err
		}
		s.finish(ctx, start, err)
		return resp, err
	}
}

func (s *slogConnectInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (s *slogConnectInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		ctx = ContextWithSlog(ctx)
		AddAttributes(ctx, map[string]any{
			"procedure":   conn.Spec().Procedure,
			"stream_type": conn.Spec().StreamType.String(),
		})
		slog.InfoContext(ctx, "Connected")
		err := next(ctx, conn)
		if s.cfg.Filter != nil && !s.cfg.Filter(conn.Spec()) {
			return err
		}
		s.finish(ctx, start, err)
		return err
	}
}

func (s *slogConnectInterceptor) finish(ctx context.Context, start time.Time, err error) {
	var cerr *connect.Error
	code := "ok"
	if err != nil {
		if !errors.As(err, &cerr) {
			cerr = connect.NewError(connect.CodeUnknown, err)
		}
		code = cerr.Code().String()
	}
	AddAttributes(ctx, map[string]any{
		"code":     code,
		"duration": time.Since(start),
	})
	if cerr == nil {
		slog.InfoContext(ctx, "Finished")
		return
	}
	logConnectError(ctx, cerr)
}

func logConnectError(ctx context.Context, cerr *connect.Error) {
	if errDetails := cerr.Details(); len(errDetails) > 0 {
		details := make([]proto.Message, 0, len(errDetails))
		for _, detail := range errDetails {
			val, err := detail.Value()
			if err != nil {
				slog.ErrorContext(ctx, "failed to convert detail value", ErrorAttributeKey, err)
				continue
			}
			details = append(details, val)
		}
		AddAttribute(ctx, "err_details", details)
	}
	ConnectCodeToLevel(cerr.Code()).log(ctx, cerr.Message())
}
