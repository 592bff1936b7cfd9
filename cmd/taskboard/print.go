package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
)

var (
	idColor   = color.New(color.FgHiBlack)
	warnColor = color.New(color.FgYellow, color.Bold)
	dimColor  = color.New(color.Faint)
)

func statusColor(st task.Status) *color.Color {
	switch st {
	case task.StatusCompleted:
		return color.New(color.FgGreen)
	case task.StatusInProgress:
		return color.New(color.FgCyan)
	case task.StatusRejected:
		return color.New(color.FgRed)
	case task.StatusPendingApproval:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}

func displayName(id, name string) string {
	if name == "" || name == id {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

func printTaskLine(t *task.TaskView) {
	fmt.Printf("%s  %-16s %-6s %3d%%  %s\n",
		idColor.Sprint(t.ID), statusColor(t.Status).Sprint(t.Status), t.Priority, t.Progress, t.Title)
}

func printTask(t *task.TaskView) {
	fmt.Printf("%s %s\n", idColor.Sprint(t.ID), t.Title)
	fmt.Printf("  Status:   %s\n", statusColor(t.Status).Sprint(t.Status))
	fmt.Printf("  Priority: %s\n", t.Priority)
	fmt.Printf("  Progress: %d%%\n", t.Progress)
	if t.DueDate != nil {
		fmt.Printf("  Due:      %s\n", t.DueDate.Format("2006-01-02"))
	}
	if t.Description != "" {
		fmt.Printf("  %s\n", strings.ReplaceAll(t.Description, "\n", "\n  "))
	}
	if len(t.Assignees) > 0 {
		fmt.Println("  Assignees:")
		for _, a := range t.Assignees {
			state := dimColor.Sprint(string(a.Source))
			switch {
			case a.Pending:
				state = warnColor.Sprint("awaiting approval")
			case a.Rejected:
				state = color.RedString("rejected")
				if a.RejectionReason != "" {
					state += ": " + a.RejectionReason
				}
			}
			fmt.Printf("    - %s  %s\n", displayName(a.UserID, a.Name), state)
		}
	}
	if len(t.Checklist) > 0 {
		fmt.Println("  Checklist:")
		for _, it := range t.Checklist {
			mark := "[ ]"
			if it.Completed {
				mark = color.GreenString("[x]")
			}
			fmt.Printf("    %s %s\n", mark, it.Text)
		}
	}
}

func printRequest(r *assignment.View) {
	title := r.TaskTitle
	if title == "" {
		title = r.TaskID
	}
	fmt.Printf("%s  %-8s %s -> %s", idColor.Sprint(r.ID), r.Status, title, displayName(r.AssignedToUserID, r.AssignedToName))
	if r.RejectionReason != "" {
		fmt.Printf("  (%s)", r.RejectionReason)
	}
	fmt.Println()
}

func printEvent(ev *eventbus.Event) {
	keys := make([]string, 0, len(ev.Metadata))
	for k := range ev.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + ev.Metadata[k]
	}
	fmt.Printf("%s %-22s %s %s\n",
		dimColor.Sprint(ev.CreatedAt.Format("15:04:05")), ev.Type, ev.ResourceID, strings.Join(pairs, " "))
}
