package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskboard/internal/approval"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/validation"
)

const (
	healthPath     = "/health"
	grpcHealthPath = "/grpc.health.v1.Health/Check"
	metricsPath    = "/metrics"
)

type Server struct {
	server         *http.Server
	env            *config.Env
	authMiddleware *auth.Middleware
	users          user.Repository
	reconciler     *reconcile.Reconciler
	gatherer       prometheus.Gatherer
	taskServer     *task.Server
	approvalServer *approval.Server
	userServer     *user.Server
	eventServer    *event.Server
}

func NewServer(
	env *config.Env,
	authMiddleware *auth.Middleware,
	users user.Repository,
	reconciler *reconcile.Reconciler,
	gatherer prometheus.Gatherer,
	taskServer *task.Server,
	approvalServer *approval.Server,
	userServer *user.Server,
	eventServer *event.Server,
) *Server {
	return &Server{
		env:            env,
		authMiddleware: authMiddleware,
		users:          users,
		reconciler:     reconciler,
		gatherer:       gatherer,
		taskServer:     taskServer,
		approvalServer: approvalServer,
		userServer:     userServer,
		eventServer:    eventServer,
	}
}

// ExemptPaths are served without a bearer token.
func ExemptPaths() []string {
	return []string{healthPath, grpcHealthPath, metricsPath}
}

// Handler builds the full HTTP handler: connect services, the /api router,
// health and metrics, behind authentication, CORS and h2c.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewJSONResponseChiMiddleware(),
		)
		r.Get("/me", s.handleMe)
		r.Post("/admin/reconcile", s.handleReconcile)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	mux := http.NewServeMux()

	mux.Handle(healthPath, &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(
		task.TaskServiceName,
		approval.AssignmentServiceName,
		user.UserServiceName,
		event.EventServiceName,
	)))
	mux.Handle(metricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	handlerOpts := connect.WithInterceptors(s.interceptors()...)

	mux.Handle(task.NewTaskServiceHandler(s.taskServer, handlerOpts))
	mux.Handle(approval.NewAssignmentServiceHandler(s.approvalServer, handlerOpts))
	mux.Handle(user.NewUserServiceHandler(s.userServer, handlerOpts))
	mux.Handle(event.NewEventServiceHandler(s.eventServer, handlerOpts))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.authMiddleware.Handler(mux)), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request, so cancelling it also ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(),
		cerr.NewConvertConnectErrorInterceptor(),
		validation.NewInterceptor(),
	}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	u, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, user.ToView(u))
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := auth.RequireAdmin(ctx); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	rep, err := s.reconciler.Run(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, rep)
}
