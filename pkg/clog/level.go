package clog

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
)

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

func HTTPStatusToLevel(status int) Level {
	switch {
	case status == 499:
		return LevelInfo
	case status >= 100 && status < 400:
		return LevelInfo
	case status >= 400 && status < 500:
		return LevelWarn
	default:
		return LevelError
	}
}

// ConnectCodeToLevel treats caller mistakes as info and server faults as
// errors. Only error level records capture a stack trace in cerr.
func ConnectCodeToLevel(code connect.Code) Level {
	switch code {
	case connect.CodeCanceled,
		connect.CodeInvalidArgument,
		connect.CodeDeadlineExceeded,
		connect.CodeNotFound,
		connect.CodeAlreadyExists,
		connect.CodePermissionDenied,
		connect.CodeFailedPrecondition,
		connect.CodeAborted,
		connect.CodeOutOfRange,
		connect.CodeUnauthenticated:
		return LevelInfo
	default:
		return LevelError
	}
}

func (l Level) log(ctx context.Context, msg string) {
	switch l {
	case LevelDebug:
		slog.DebugContext(ctx, msg)
	case LevelInfo:
		slog.InfoContext(ctx, msg)
	case LevelWarn:
		slog.WarnContext(ctx, msg)
	default:
		slog.ErrorContext(ctx, msg)
	}
}
