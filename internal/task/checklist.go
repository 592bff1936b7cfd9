package task

import (
	"math"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// Progress is round(100*completed/total), 0 for an empty checklist. The
// result is 100 only when every item is complete.
func Progress(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}
	p := int(math.Round(100 * float64(done) / float64(len(items))))
	// Rounding must not report a partial checklist as done or untouched.
	switch {
	case p == 100 && done < len(items):
		p = 99
	case p == 0 && done > 0:
		p = 1
	}
	return p
}

func StatusForProgress(progress int) Status {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

func rejectedTaskError() error {
	return cerr.NewError(cerr.PermissionDenied, "task was rejected and can no longer be edited", nil)
}

// ReplaceChecklist stores items and derives progress and status from them.
// The caller applies Resolve afterwards so pending requests still win.
func (t *Task) ReplaceChecklist(items []ChecklistItem) error {
	if t.Status == StatusRejected {
		return rejectedTaskError()
	}
	t.Checklist = items
	t.Progress = Progress(items)
	t.Status = StatusForProgress(t.Progress)
	return nil
}

// ManualStatusTargets are the statuses a user may set directly.
var ManualStatusTargets = []Status{StatusPending, StatusInProgress, StatusCompleted}

// SetStatus applies a manual transition. Completed marks every checklist
// item complete.
func (t *Task) SetStatus(s Status) error {
	if t.Status == StatusRejected {
		return rejectedTaskError()
	}
	switch s {
	case StatusCompleted:
		for i := range t.Checklist {
			t.Checklist[i].Completed = true
		}
		t.Progress = 100
	case StatusPending, StatusInProgress:
	default:
		return cerr.NewError(cerr.InvalidArgument, "status must be one of [Pending, In Progress, Completed]", nil).
			AddViolation("status", "oneof", "status must be one of [Pending, In Progress, Completed]")
	}
	t.Status = s
	return nil
}
