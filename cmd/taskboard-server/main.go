package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kazz187/taskboard/internal/approval"
	"github.com/kazz187/taskboard/internal/assignment"
	assignmentrepo "github.com/kazz187/taskboard/internal/assignment/repositoryimpl"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/database"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/metrics"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/storage"

	server "github.com/kazz187/taskboard/internal"
)

type repositories struct {
	tasks    task.Repository
	requests assignment.Repository
	users    user.Repository
}

func openRepositories(ctx context.Context, env *config.Env) (*repositories, error) {
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "sqlite":
		db, err := database.OpenSQLite(env.SQLitePath)
		if err != nil {
			return nil, err
		}
		tasks, err := taskrepo.NewSQLRepository(db)
		if err != nil {
			return nil, err
		}
		requests, err := assignmentrepo.NewSQLRepository(db)
		if err != nil {
			return nil, err
		}
		users, err := userrepo.NewSQLRepository(db)
		if err != nil {
			return nil, err
		}
		return &repositories{tasks: tasks, requests: requests, users: users}, nil
	case "s3":
		s, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		store = s
	default:
		s, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		store = s
	}
	return &repositories{
		tasks:    taskrepo.NewYAMLRepository(store),
		requests: assignmentrepo.NewYAMLRepository(store),
		users:    userrepo.NewYAMLRepository(store),
	}, nil
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	repos, err := openRepositories(ctx, env)
	if err != nil {
		slog.Error("failed to open repositories", "storage_type", env.StorageEnv.Type, "error", err)
		os.Exit(1)
	}

	if env.BootstrapAdminID != "" {
		if _, err := user.EnsureAdmin(ctx, repos.users, env.BootstrapAdminID, env.BootstrapAdminName, env.BootstrapAdminEmail); err != nil {
			slog.Error("failed to bootstrap admin", "user_id", env.BootstrapAdminID, "error", err)
			os.Exit(1)
		}
	}

	// Setup metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewPrometheus(reg, "")
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	bus := eventbus.New(collector)
	store := task.NewStore(repos.tasks, repos.requests, task.NewLocker(), bus, collector)
	classifier := task.NewClassifier(repos.tasks, env.OverloadThreshold, collector)
	workflow := approval.NewWorkflow(store, repos.users, bus, collector)
	reconciler := reconcile.NewReconciler(store, env.ReconcileConcurrency, collector)

	issuer := auth.NewIssuer(env.JWTSecret, env.TokenTTL)
	authMiddleware := auth.NewMiddleware(issuer, user.NewActorLoader(repos.users), server.ExemptPaths()...)

	srv := server.NewServer(
		env,
		authMiddleware,
		repos.users,
		reconciler,
		reg,
		task.NewServer(store, classifier, repos.users, workflow, bus),
		approval.NewServer(workflow, store, classifier, repos.users),
		user.NewServer(repos.users),
		event.NewServer(bus),
	)

	if env.ReconcileSchedule != "" {
		scheduler, err := reconcile.NewScheduler(ctx, reconciler, env.ReconcileSchedule)
		if err != nil {
			slog.Error("failed to schedule reconciliation", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
