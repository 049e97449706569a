package app

import (
	"net"
	"net/http"
	"time"

	"github.com/g3tech/donation-engine/internal/config"
	"github.com/g3tech/donation-engine/pkg/user"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	userIdHeader    = "X-User-Id"
	requestIdHeader = "X-Request-Id"
)

// SetupMiddleware wires the middlewares shared by every route.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(requestId)
	r.Use(deps.Metrics.Middleware)
	r.Use(propagateUser)
}

// requestId reuses the caller's X-Request-Id or generates one, and echoes it in the response.
func requestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(requestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, id)
		log.WithFields(log.Fields{
			"requestId": id,
			"method":    req.Method,
			"path":      req.URL.Path,
		}).Debug("Handling request")
		next.ServeHTTP(w, req)
	})
}

// propagateUser puts the uid from the X-User-Id header into the context. The header is set by
// the identity provider in front of the service.
func propagateUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		uid := req.Header.Get(userIdHeader)
		if uid == "" {
			next.ServeHTTP(w, req)
			return
		}
		log.Debugf("Propagating user %s", uid)
		ctx := user.WithUser(req.Context(), user.User{Uid: uid})
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// requireUser rejects requests that reached a user scoped route without a user.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, err := user.CurrentUid(req.Context()); err != nil {
			log.Debugf("rejecting %s %s: %v", req.Method, req.URL.Path, err)
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// rateLimit limits API requests per client IP. A non positive limit disables it.
func rateLimit(cfg config.RateLimit) mux.MiddlewareFunc {
	if cfg.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(cfg.PerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			host, _, _ := net.SplitHostPort(r.RemoteAddr)
			log.Warnf("rate limit exceeded for %s", host)
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}),
	)
}
