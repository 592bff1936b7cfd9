package task

import (
	"slices"

	"github.com/kazz187/taskboard/internal/assignment"
)

// AssigneeView is one roster line as presented to clients: a stored assignee
// or a candidate whose request is still Pending or was Rejected.
type AssigneeView struct {
	UserID          string
	Source          Source
	RequestID       string
	InRoster        bool
	Pending         bool
	Rejected        bool
	RejectionReason string
}

type Resolution struct {
	Status    Status
	Assignees []AssigneeView
}

// CurrentRequests maps each candidate of t to the request that speaks for
// them: a Pending request if one exists, otherwise the most recently updated
// one. Requests of other tasks are ignored.
func CurrentRequests(t *Task, requests []*assignment.Request) map[string]*assignment.Request {
	current := make(map[string]*assignment.Request)
	for _, r := range requests {
		if r.TaskID != t.ID {
			continue
		}
		prev, ok := current[r.AssignedToUserID]
		if !ok || supersedes(r, prev) {
			current[r.AssignedToUserID] = r
		}
	}
	return current
}

// heldByApproval returns the roster members whose entry still points at an
// Approved request. A later request for the same user does not unseat them.
func heldByApproval(t *Task, requests []*assignment.Request) map[string]bool {
	approved := make(map[string]bool)
	for _, r := range requests {
		if r.TaskID == t.ID && r.Status == assignment.StatusApproved {
			approved[r.ID] = true
		}
	}
	held := make(map[string]bool)
	for _, a := range t.AssignedTo {
		if a.Source == SourceRequest && approved[a.RequestID] {
			held[a.UserID] = true
		}
	}
	return held
}

func supersedes(r, prev *assignment.Request) bool {
	rPending := r.Status == assignment.StatusPending
	prevPending := prev.Status == assignment.StatusPending
	if rPending != prevPending {
		return rPending
	}
	return !r.UpdatedAt.Before(prev.UpdatedAt)
}

// Resolve derives the authoritative status of t from its roster, its
// assignment requests and its checklist. It is pure: the stored status is
// only consulted as the fallback when no request decides the outcome.
func Resolve(t *Task, requests []*assignment.Request) Resolution {
	current := CurrentRequests(t, requests)
	held := heldByApproval(t, requests)

	direct := make(map[string]bool, len(t.AssignedTo))
	participants := t.AssigneeIDs()
	for _, a := range t.AssignedTo {
		if a.Source == SourceDirect {
			direct[a.UserID] = true
		}
	}
	for _, r := range requests {
		if r.TaskID == t.ID && !slices.Contains(participants, r.AssignedToUserID) {
			participants = append(participants, r.AssignedToUserID)
		}
	}

	return Resolution{
		Status:    resolveStatus(t, participants, direct, held, current),
		Assignees: assigneeViews(t, requests, direct, held, current),
	}
}

func resolveStatus(t *Task, participants []string, direct, held map[string]bool, current map[string]*assignment.Request) Status {
	// A single rejected participant is the one element case of this rule.
	allRejected := len(participants) > 0
	for _, uid := range participants {
		r, ok := current[uid]
		if direct[uid] || held[uid] || !ok || r.Status != assignment.StatusRejected {
			allRejected = false
			break
		}
	}
	if allRejected {
		return StatusRejected
	}

	pending, approved := false, len(held) > 0
	for _, r := range current {
		switch r.Status {
		case assignment.StatusPending:
			pending = true
		case assignment.StatusApproved:
			approved = true
		}
	}
	switch {
	case pending:
		return StatusPendingApproval
	case approved:
		return checklistStatus(t.Checklist)
	case t.Status == StatusRejected || t.Status == StatusPendingApproval:
		// Only requests justify these; without them the checklist decides.
		return StatusForProgress(Progress(t.Checklist))
	default:
		return t.Status
	}
}

func checklistStatus(items []ChecklistItem) Status {
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}
	switch {
	case len(items) > 0 && done == len(items):
		return StatusCompleted
	case done > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

func assigneeViews(t *Task, requests []*assignment.Request, direct, held map[string]bool, current map[string]*assignment.Request) []AssigneeView {
	views := make([]AssigneeView, 0, len(t.AssignedTo))
	seen := make(map[string]bool, len(t.AssignedTo))
	for _, a := range t.AssignedTo {
		if seen[a.UserID] {
			continue
		}
		seen[a.UserID] = true
		v := AssigneeView{UserID: a.UserID, Source: a.Source, RequestID: a.RequestID, InRoster: true}
		if r, ok := current[a.UserID]; ok {
			v.Pending = r.Status == assignment.StatusPending
			if r.Status == assignment.StatusRejected && !direct[a.UserID] && !held[a.UserID] {
				v.Rejected = true
				v.RejectionReason = r.RejectionReason
			}
		}
		views = append(views, v)
	}
	for _, r := range requests {
		if r.TaskID != t.ID || seen[r.AssignedToUserID] {
			continue
		}
		cur := current[r.AssignedToUserID]
		if cur.Status == assignment.StatusApproved {
			continue
		}
		seen[r.AssignedToUserID] = true
		v := AssigneeView{UserID: cur.AssignedToUserID, Source: SourceRequest, RequestID: cur.ID}
		if cur.Status == assignment.StatusPending {
			v.Pending = true
		} else {
			v.Rejected = true
			v.RejectionReason = cur.RejectionReason
		}
		views = append(views, v)
	}
	return views
}

// AfterRejectStatus is the status written right after a request is rejected.
// It only looks at request outcomes and the roster, never at the checklist;
// the next read applies Resolve.
func AfterRejectStatus(t *Task, requests []*assignment.Request) Status {
	current := CurrentRequests(t, requests)
	directs := t.DirectCount()
	held := heldByApproval(t, requests)

	allRejected := len(current) > 0 && len(held) == 0
	pending, approved := 0, len(held)
	for _, r := range current {
		switch r.Status {
		case assignment.StatusPending:
			pending++
			allRejected = false
		case assignment.StatusApproved:
			approved++
			allRejected = false
		}
	}
	switch {
	case allRejected && directs == 0:
		return StatusRejected
	case pending > 0:
		return StatusPendingApproval
	case approved+directs > 0:
		return StatusPending
	default:
		return StatusPendingApproval
	}
}
