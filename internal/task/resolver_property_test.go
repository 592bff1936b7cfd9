package task

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kazz187/taskboard/internal/assignment"
)

var (
	userPool       = []string{"u1", "u2", "u3", "u4", "u5"}
	requestStatus  = []assignment.Status{assignment.StatusPending, assignment.StatusApproved, assignment.StatusRejected}
	storedStatuses = AllStatuses
)

func drawScenario(rt *rapid.T) (*Task, []*assignment.Request) {
	tk := &Task{
		ID:     "T1",
		Status: rapid.SampledFrom(storedStatuses).Draw(rt, "stored"),
	}
	for i, done := range rapid.SliceOfN(rapid.Bool(), 0, 8).Draw(rt, "checklist") {
		tk.Checklist = append(tk.Checklist, ChecklistItem{Text: fmt.Sprintf("item %d", i), Completed: done})
	}
	tk.Progress = Progress(tk.Checklist)

	var reqs []*assignment.Request
	n := rapid.IntRange(0, 6).Draw(rt, "requests")
	for i := range n {
		at := base.Add(time.Duration(rapid.IntRange(0, 100).Draw(rt, "minute")) * time.Minute)
		reqs = append(reqs, &assignment.Request{
			ID:               fmt.Sprintf("R%d", i),
			TaskID:           "T1",
			AssignedToUserID: rapid.SampledFrom(userPool).Draw(rt, "candidate"),
			Status:           rapid.SampledFrom(requestStatus).Draw(rt, "status"),
			CreatedAt:        at,
			UpdatedAt:        at,
		})
	}
	for _, uid := range rapid.SliceOfNDistinct(rapid.SampledFrom(userPool), 0, 3, rapid.ID[string]).Draw(rt, "direct") {
		tk.AddAssignee(Direct(uid))
	}
	// Approved candidates join the roster, as the workflow does.
	for uid, r := range CurrentRequests(tk, reqs) {
		if r.Status == assignment.StatusApproved {
			tk.AddAssignee(ViaRequest(uid, r.ID))
		}
	}
	return tk, reqs
}

func TestPropertyResolveIsStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tk, reqs := drawScenario(rt)
		first := Resolve(tk, reqs).Status

		again := tk.Clone()
		again.Status = first
		if got := Resolve(again, reqs).Status; got != first {
			rt.Fatalf("resolving a resolved task changed status %q -> %q", first, got)
		}
	})
}

func TestPropertyDirectAssigneeNeverRejected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tk, reqs := drawScenario(rt)
		if tk.DirectCount() == 0 {
			return
		}
		if got := Resolve(tk, reqs).Status; got == StatusRejected {
			rt.Fatalf("task with direct assignees %v resolved to Rejected", tk.AssignedTo)
		}
	})
}

func TestPropertyAllRejectedWithoutDirect(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tk, reqs := drawScenario(rt)
		current := CurrentRequests(tk, reqs)
		if tk.DirectCount() > 0 || len(current) == 0 {
			return
		}
		for _, r := range current {
			if r.Status != assignment.StatusRejected {
				return
			}
		}
		if got := Resolve(tk, reqs).Status; got != StatusRejected {
			rt.Fatalf("every request rejected and no direct assignee, got %q", got)
		}
	})
}

func TestPropertyPendingRequestMeansPendingApproval(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tk, reqs := drawScenario(rt)
		pending := false
		for _, r := range CurrentRequests(tk, reqs) {
			pending = pending || r.Status == assignment.StatusPending
		}
		if !pending {
			return
		}
		if got := Resolve(tk, reqs).Status; got != StatusPendingApproval {
			rt.Fatalf("pending request present, got %q", got)
		}
	})
}

func TestPropertyProgressBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		done := rapid.SliceOfN(rapid.Bool(), 0, 400).Draw(rt, "checklist")
		p := Progress(items(done...))
		if p < 0 || p > 100 {
			rt.Fatalf("progress %d out of range", p)
		}
		completed := 0
		for _, d := range done {
			if d {
				completed++
			}
		}
		all := len(done) > 0 && completed == len(done)
		if (p == 100) != all {
			rt.Fatalf("progress %d with %d/%d complete", p, completed, len(done))
		}
		if len(done) == 0 && p != 0 {
			rt.Fatalf("empty checklist has progress %d", p)
		}
		if completed > 0 && p == 0 {
			rt.Fatalf("progress 0 with %d/%d complete", completed, len(done))
		}
	})
}
