package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"granaia/internal/auth"
	"granaia/internal/cache"
	"granaia/internal/core"
	applog "granaia/internal/log"
	"granaia/internal/middleware/ratelimit"
	"granaia/internal/middleware/security"
	"granaia/internal/middleware/trace"
	"granaia/internal/services"
)

// Options configures the server wiring.
type Options struct {
	Addr              string
	JWTSecret         string
	RequestsPerMinute int
	Clock             core.Clock

	// Readiness reports whether the entity store is reachable.
	Readiness func(context.Context) error
}

type Server struct {
	http.Server

	users    *services.UserService
	expenses *services.ExpenseService
	incomes  *services.IncomeService
	clock    core.Clock
	ready    func(context.Context) error

	// Dashboard responses are cached per kind+user+period. A per-kind
	// generation counter folded into the key invalidates whole kinds
	// on mutation without scanning the cache.
	dashCache    *cache.LRUCache[core.Dashboard]
	expenseGen   atomic.Int64
	incomeGen    atomic.Int64
	cacheManager *cache.Manager

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes, middleware and caches into a ready-to-run server.
func NewServer(opts Options, users *services.UserService, expenses *services.ExpenseService, incomes *services.IncomeService) *Server {
	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock{}
	}

	s := &Server{
		users:        users,
		expenses:     expenses,
		incomes:      incomes,
		clock:        clock,
		ready:        opts.Readiness,
		dashCache:    cache.NewLRUCache[core.Dashboard](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.dashCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RequestsPerMinute,
	})

	detector := security.NewDetector()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP)
	verifier := auth.NewVerifier(opts.JWTSecret, users)

	httpLogger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentHTTP,
	})
	logInjector := applog.Middleware(httpLogger)
	requestIDs := applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})

	rateLimited := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, envelope{Message: "limite de requisições excedido"})
	})

	suspect := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if detector.DetectSuspiciousRequest(r) {
				slog.WarnContext(r.Context(), "Suspicious request",
					"method", r.Method, "path", r.URL.Path,
					"client_ip", detector.ExtractClientIP(r))
			}
			h.ServeHTTP(w, r)
		})
	}

	// Outer chain for every route.
	base := func(h http.Handler) http.Handler {
		return tracer.Middleware(logInjector(requestIDs(headers.Middleware(rateLimited(suspect(h))))))
	}
	// Authenticated routes additionally resolve the bearer token.
	authed := func(h http.HandlerFunc) http.Handler {
		return base(verifier.Middleware(h))
	}
	// Listing and record routes are premium gated on top of
	// authentication. Account lifecycle and billing routes stay
	// auth-only so an expired user can still renew.
	gated := func(h http.HandlerFunc) http.Handler {
		return base(verifier.Middleware(s.requirePremium(h)))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", base(http.HandlerFunc(s.handleHealthz)))
	mux.Handle("GET /readyz", base(http.HandlerFunc(s.handleReadyz)))

	mux.Handle("POST /usuarios", authed(s.handleCreateUser))
	mux.Handle("GET /usuarios", gated(s.handleListUsers))
	mux.Handle("GET /usuarios/{id}", authed(s.handleGetUser))
	mux.Handle("PUT /usuarios/{id}", authed(s.handleUpdateUser))
	mux.Handle("DELETE /usuarios/{id}", authed(s.handleDeleteUser))
	mux.Handle("GET /usuarios/remotejid/{remotejid}", authed(s.handleGetUserByRemoteJID))
	mux.Handle("PUT /usuarios/{id}/premium", authed(s.handleUpdatePremium))
	mux.Handle("PUT /usuarios/{id}/last-message", authed(s.handleUpdateLastMessage))

	mux.Handle("POST /gastos", gated(s.handleCreateExpense))
	mux.Handle("GET /gastos", gated(s.handleListExpenses))
	mux.Handle("GET /gastos/dashboard", gated(s.handleExpenseDashboard))
	mux.Handle("GET /gastos/{id}", gated(s.handleGetExpense))
	mux.Handle("PUT /gastos/{id}", gated(s.handleUpdateExpense))
	mux.Handle("DELETE /gastos/{id}", gated(s.handleDeleteExpense))

	mux.Handle("POST /receitas", gated(s.handleCreateIncome))
	mux.Handle("GET /receitas", gated(s.handleListIncomes))
	mux.Handle("GET /receitas/dashboard", gated(s.handleIncomeDashboard))
	mux.Handle("GET /receitas/{id}", gated(s.handleGetIncome))
	mux.Handle("PUT /receitas/{id}", gated(s.handleUpdateIncome))
	mux.Handle("DELETE /receitas/{id}", gated(s.handleDeleteIncome))

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// requirePremium rejects requests from users whose premium window has
// lapsed. The authenticated user must already be on the context.
func (s *Server) requirePremium(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, envelope{Message: "não autenticado"})
			return
		}
		if err := core.CheckPremium(u, s.clock.Now()); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "store unavailable"})
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

// dashboardKey builds the cache key for a dashboard query.
func (s *Server) dashboardKey(kind core.RecordKind, f core.RecordFilter) string {
	var gen int64
	switch kind {
	case core.KindExpense:
		gen = s.expenseGen.Load()
	default:
		gen = s.incomeGen.Load()
	}

	user := ""
	if f.UserID != nil {
		user = f.UserID.String()
	}
	from, to := "", ""
	if f.DateFrom != nil {
		from = f.DateFrom.UTC().Format(time.RFC3339Nano)
	}
	if f.DateTo != nil {
		to = f.DateTo.UTC().Format(time.RFC3339Nano)
	}

	return fmt.Sprintf("%s:%d:%s:%s:%s", kind, gen, user, from, to)
}

// invalidateDashboards drops every cached dashboard for the kind.
func (s *Server) invalidateDashboards(kind core.RecordKind) {
	switch kind {
	case core.KindExpense:
		s.expenseGen.Add(1)
	default:
		s.incomeGen.Add(1)
	}
}

// Shutdown stops the HTTP server and the background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
