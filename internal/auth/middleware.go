package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// ActorLoader resolves the subject of a verified token to an Actor. The
// stored role wins over the role claim so demotions apply immediately.
type ActorLoader interface {
	LoadActor(ctx context.Context, userID string) (*Actor, error)
}

type Middleware struct {
	issuer *Issuer
	loader ActorLoader
	exempt map[string]struct{}
}

func NewMiddleware(issuer *Issuer, loader ActorLoader, exemptPaths ...string) *Middleware {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}
	return &Middleware{issuer: issuer, loader: loader, exempt: exempt}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.exempt[r.URL.Path]; ok || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := m.issuer.Parse(token)
		if err != nil {
			slog.DebugContext(r.Context(), "rejected bearer token", "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		actor, err := m.loader.LoadActor(r.Context(), claims.Subject)
		if err != nil {
			slog.DebugContext(r.Context(), "unknown token subject", "user_id", claims.Subject, "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
