package cerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"connectrpc.com/connect"
	"google.golang.org/protobuf/proto"

	"github.com/kazz187/taskboard/pkg/clog"
)

type Error struct {
	Code    Code
	Msg     string          // returned to the caller together with Code
	Err     error           // logged only
	Stack   string          // captured for error level codes
	Details []proto.Message // returned to the caller as error details
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.ConnectCodeToLevel(code.ConnectCode()) == clog.LevelError {
		stack := make([]byte, 2048)
		n := runtime.Stack(stack, false)
		err.Stack = string(stack[:n])
	}
	return err
}

func NewErrorWithDetails(code Code, msg string, underlying error, details []proto.Message) *Error {
	err := NewError(code, msg, underlying)
	err.Details = details
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) AddDetailError(err proto.Message) {
	e.Details = append(e.Details, err)
}

// AddViolation attaches a field level violation, the same detail type
// protovalidate emits, so clients decode one shape for every invalid input.
func (e *Error) AddViolation(field, ruleID, msg string) *Error {
	e.Details = append(e.Details, &validate.Violation{
		Field: &validate.FieldPath{
			Elements: []*validate.FieldPathElement{{FieldName: proto.String(field)}},
		},
		RuleId:  proto.String(ruleID),
		Message: proto.String(msg),
	})
	return e
}

func (e *Error) ConnectError() *connect.Error {
	connectErr := connect.NewError(e.Code.ConnectCode(), errors.New(e.Msg))
	for _, detailMsg := range e.Details {
		detail, err := connect.NewErrorDetail(detailMsg)
		if err != nil {
			continue
		}
		connectErr.AddDetail(detail)
	}
	return connectErr
}

// Normalize turns any error into an *Error, treating cancellation as
// Canceled and unknown errors as Unknown.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return NewError(Canceled, "connection closed", err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.Err == "operation was canceled" {
		return NewError(Canceled, "connection closed", err)
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	return NewError(Unknown, "unknown error", err)
}

func ExtractConnectError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		clog.AddError(ctx, err)
		return connectErr
	}
	cerr := Normalize(err)
	if cerr.Code != Canceled {
		clog.AddError(ctx, err)
		if cerr.Stack != "" {
			clog.AddStack(ctx, cerr.Stack)
		}
	}
	return cerr.ConnectError()
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return Unknown
}
