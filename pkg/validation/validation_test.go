package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/pkg/cerr"
)

type createRequest struct {
	Title      string   `json:"title" validate:"required,max=10"`
	Priority   string   `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	AssignedTo []string `json:"assigned_to" validate:"unique,dive,required"`
}

func TestStructValid(t *testing.T) {
	err := Struct(&createRequest{Title: "ok", Priority: "High", AssignedTo: []string{"a", "b"}})
	require.NoError(t, err)
}

func TestStructReportsViolations(t *testing.T) {
	err := Struct(&createRequest{Priority: "Urgent", AssignedTo: []string{"a", "a"}})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	var ce *cerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Details, 3)
	assert.Contains(t, ce.Msg, "title is required")
	assert.Contains(t, ce.Msg, "priority must be one of [Low Medium High]")
	assert.Contains(t, ce.Msg, "assigned_to must not contain duplicates")
}

func TestStructEmptyElement(t *testing.T) {
	err := Struct(&createRequest{Title: "x", AssignedTo: []string{""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigned_to[0] is required")
}
