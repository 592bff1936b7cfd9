package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
)

var (
	app = kingpin.New("taskboard", "Task board client with assignment approvals")

	serverURL = app.Flag("server", "Server base URL").Envar("TASKBOARD_SERVER").Default("http://localhost:3100").String()
	token     = app.Flag("token", "Bearer token").Envar("TASKBOARD_TOKEN").String()

	// Token commands
	tokenCmd    = app.Command("token", "Issue a bearer token signed with the server secret")
	tokenUser   = tokenCmd.Arg("user", "User ID").Required().String()
	tokenRole   = tokenCmd.Flag("role", "Role claim").Default("member").Enum("admin", "member")
	tokenSecret = tokenCmd.Flag("secret", "JWT secret").Envar("TASKBOARD_JWT_SECRET").Required().String()
	tokenTTL    = tokenCmd.Flag("ttl", "Token lifetime").Default("24h").Duration()

	// Task commands
	taskCmd = app.Command("task", "Task commands")

	taskCreateCmd         = taskCmd.Command("create", "Create a task")
	taskCreateTitle       = taskCreateCmd.Arg("title", "Task title").Required().String()
	taskCreateDescription = taskCreateCmd.Flag("description", "Task description").Short('d').String()
	taskCreatePriority    = taskCreateCmd.Flag("priority", "Priority").Short('p').Default("Medium").Enum("Low", "Medium", "High")
	taskCreateDue         = taskCreateCmd.Flag("due", "Due date (YYYY-MM-DD)").String()
	taskCreateAssign      = taskCreateCmd.Flag("assign", "Candidate user ID (repeatable)").Short('a').Strings()
	taskCreateItems       = taskCreateCmd.Flag("item", `Checklist item, "[x] " prefix marks it done (repeatable)`).Short('i').Strings()

	taskListCmd      = taskCmd.Command("list", "List visible tasks")
	taskListStatus   = taskListCmd.Flag("status", "Filter by status").String()
	taskListPriority = taskListCmd.Flag("priority", "Filter by priority").String()
	taskListAssignee = taskListCmd.Flag("assignee", "Filter by assignee").String()
	taskListQuery    = taskListCmd.Flag("query", "Search title and description").Short('q').String()
	taskListSort     = taskListCmd.Flag("sort", "Sort field").Default("created_at").Enum("created_at", "updated_at", "due_date", "priority", "title")
	taskListDesc     = taskListCmd.Flag("desc", "Sort descending").Bool()
	taskListLimit    = taskListCmd.Flag("limit", "Page size").Default("50").Int()
	taskListOffset   = taskListCmd.Flag("offset", "Page offset").Int()

	taskShowCmd = taskCmd.Command("show", "Show task details")
	taskShowID  = taskShowCmd.Arg("id", "Task ID").Required().String()

	taskChecklistCmd   = taskCmd.Command("checklist", "Replace a task checklist")
	taskChecklistID    = taskChecklistCmd.Arg("id", "Task ID").Required().String()
	taskChecklistItems = taskChecklistCmd.Arg("items", `Checklist items, "[x] " prefix marks one done`).Strings()

	taskStatusCmd    = taskCmd.Command("status", "Set a task status")
	taskStatusID     = taskStatusCmd.Arg("id", "Task ID").Required().String()
	taskStatusTarget = taskStatusCmd.Arg("status", "New status").Required().Enum("Pending", "In Progress", "Completed")

	// Request commands
	requestCmd = app.Command("request", "Assignment request commands")

	requestListCmd  = requestCmd.Command("list", "List pending requests")
	requestListUser = requestListCmd.Flag("user", "Only this candidate (admins)").String()

	requestCreateCmd  = requestCmd.Command("create", "Ask a user to take on a task")
	requestCreateTask = requestCreateCmd.Arg("task", "Task ID").Required().String()
	requestCreateUser = requestCreateCmd.Arg("user", "Candidate user ID").Required().String()

	requestApproveCmd = requestCmd.Command("approve", "Approve a request addressed to you")
	requestApproveID  = requestApproveCmd.Arg("id", "Request ID").Required().String()

	requestRejectCmd    = requestCmd.Command("reject", "Reject a request addressed to you")
	requestRejectID     = requestRejectCmd.Arg("id", "Request ID").Required().String()
	requestRejectReason = requestRejectCmd.Flag("reason", "Rejection reason").Short('r').String()

	overloadCmd   = app.Command("overload", "Show which users are overloaded")
	overloadUsers = overloadCmd.Arg("users", "User IDs").Required().Strings()

	reconcileCmd = app.Command("reconcile", "Repair drifted task statuses")

	watchCmd      = app.Command("watch", "Stream task and request events")
	watchTypes    = watchCmd.Flag("type", "Event type (repeatable)").Short('t').Strings()
	watchResource = watchCmd.Flag("resource", "Task or request ID").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if command == tokenCmd.FullCommand() {
		exitOnError(runToken())
		return
	}

	c := newClient(*serverURL, *token)
	var err error
	switch command {
	case taskCreateCmd.FullCommand():
		err = c.createTask(ctx)
	case taskListCmd.FullCommand():
		err = c.listTasks(ctx)
	case taskShowCmd.FullCommand():
		err = c.showTask(ctx)
	case taskChecklistCmd.FullCommand():
		err = c.updateChecklist(ctx)
	case taskStatusCmd.FullCommand():
		err = c.updateStatus(ctx)
	case requestListCmd.FullCommand():
		err = c.listRequests(ctx)
	case requestCreateCmd.FullCommand():
		err = c.createRequest(ctx)
	case requestApproveCmd.FullCommand():
		err = c.respond(ctx, *requestApproveID, "approve", "")
	case requestRejectCmd.FullCommand():
		err = c.respond(ctx, *requestRejectID, "reject", *requestRejectReason)
	case overloadCmd.FullCommand():
		err = c.checkOverload(ctx)
	case reconcileCmd.FullCommand():
		err = c.reconcile(ctx)
	case watchCmd.FullCommand():
		err = c.watch(ctx)
	}
	exitOnError(err)
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
