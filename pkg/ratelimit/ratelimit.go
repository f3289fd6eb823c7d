// Package ratelimit throttles requests per caller with a token bucket.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GlebRadaev/rewardwallet/pkg/auth"
	"github.com/GlebRadaev/rewardwallet/pkg/logger"
	"github.com/GlebRadaev/rewardwallet/pkg/utils"
)

const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	limit      rate.Limit
	burst      int
	retryAfter string
	mu         sync.Mutex
	visitors   map[string]*visitor
	lastSweep  time.Time
	now        func() time.Time
}

// New allows perMinute requests per caller with bursts of up to burst.
func New(perMinute float64, burst int) *Limiter {
	perSecond, retryAfter := perMinute/60, 1
	if perSecond <= 0 {
		perSecond = 1
	} else {
		retryAfter = int(math.Ceil(60 / perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limit:      rate.Limit(perSecond),
		burst:      burst,
		retryAfter: strconv.Itoa(retryAfter),
		visitors:   make(map[string]*visitor),
		now:        time.Now,
	}
}

// Allow reports whether the caller identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware keys authenticated requests by user and the rest by client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.Allow(key) {
			logger.FromContext(r.Context()).Warn("rate limited", zap.String("key", key), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", l.retryAfter)
			utils.RespondWithJSON(w, http.StatusTooManyRequests, utils.Response{Code: "RATE_LIMITED", Message: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if id, ok := auth.UserID(r.Context()); ok {
		return "user:" + strconv.FormatInt(id, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
