package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazz187/taskboard/pkg/clog"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	response any
	err      error
}

func receiverFromContext(ctx context.Context) *responseReceiver {
	rr, _ := ctx.Value(responseReceiverKey{}).(*responseReceiver)
	return rr
}

// SetJSONResponse records the value the chi middleware encodes after the
// handler returns.
func SetJSONResponse(ctx context.Context, response any) {
	if rr := receiverFromContext(ctx); rr != nil {
		rr.response = response
	}
}

func SetJSONError(ctx context.Context, err error) {
	if rr := receiverFromContext(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewJSONResponseChiMiddleware writes whatever the handler recorded with
// SetJSONResponse or SetJSONError as a JSON body.
func NewJSONResponseChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := context.WithValue(r.Context(), responseReceiverKey{}, rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			writeHTTPResponse(ctx, rw, rr)
		})
	}
}

type httpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeHTTPResponse(ctx context.Context, rw http.ResponseWriter, rr *responseReceiver) {
	if rr.err == nil {
		writeJSON(ctx, rw, http.StatusOK, rr.response)
		return
	}
	cerr := Normalize(rr.err)
	if cerr.Code != Canceled {
		clog.AddError(ctx, rr.err)
		if cerr.Stack != "" {
			clog.AddStack(ctx, cerr.Stack)
		}
	}
	writeJSON(ctx, rw, cerr.Code.HTTPCode(), httpError{Code: cerr.Code.String(), Message: cerr.Msg})
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, body any) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(body); err != nil {
		clog.AddError(ctx, errors.Join(errors.New("failed to encode response"), err))
		status = http.StatusInternalServerError
		buf = bytes.NewBufferString(`{"code":"internal","message":"server error"}` + "\n")
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, err)
	}
}
