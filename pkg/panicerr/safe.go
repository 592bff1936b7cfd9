// Package panicerr converts panics in worker functions into errors.
package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// SafeContext wraps fn so that a panic is returned as an Internal error
// carrying the recovered value and stack.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if r := catcher.Recovered(); r != nil {
			e := cerr.NewError(cerr.Internal, "recovered from panic", r.AsError())
			e.Stack = string(r.Stack)
			return e
		}
		return err
	}
}
