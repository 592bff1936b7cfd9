package panicerr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestSafeContext(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	assert.NoError(t, SafeContext(func(context.Context) error { return nil })(ctx))
	assert.ErrorIs(t, SafeContext(func(context.Context) error { return boom })(ctx), boom)

	err := SafeContext(func(context.Context) error { panic("bad task") })(ctx)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
	assert.Contains(t, err.Error(), "bad task")
	var e *cerr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.NotEmpty(t, e.Stack)
	}
}
