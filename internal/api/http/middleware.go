package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mind-engage/bizassess/internal/apperr"
)

// accessLog emits one structured line per request.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func securityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter allows max requests per window for each client address,
// refilling continuously.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	deny  func(w http.ResponseWriter, r *http.Request, err error)

	mu        sync.Mutex
	clients   map[string]*client
	lastPrune time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewRateLimiter(window time.Duration, max int, deny func(w http.ResponseWriter, r *http.Request, err error)) *RateLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	if max <= 0 {
		max = 100
	}
	return &RateLimiter{
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		idle:    window,
		deny:    deny,
		clients: make(map[string]*client),
	}
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if now.Sub(rl.lastPrune) > rl.idle {
		for k, c := range rl.clients {
			if now.Sub(c.seen) > rl.idle {
				delete(rl.clients, k)
			}
		}
		rl.lastPrune = now
	}
	c, ok := rl.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.seen = now
	return c.lim.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r), time.Now()) {
			w.Header().Set("Retry-After", "60")
			rl.deny(w, r, &apperr.Error{
				Code:    apperr.CodeRateLimited,
				Message: "Too many requests from this IP, please try again later.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the request's IP; RealIP has already rewritten RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
