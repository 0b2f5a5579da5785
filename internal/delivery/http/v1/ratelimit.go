package v1

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	rateLimitSweepInterval = time.Minute
	rateLimitClientTTL     = 3 * time.Minute
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps a token bucket per client IP. Idle clients are
// swept on the request path, so no background goroutine is needed.
type ipRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateLimitClient
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		clients:   make(map[string]*rateLimitClient),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= rateLimitSweepInterval {
		for k, client := range l.clients {
			if now.Sub(client.lastSeen) >= rateLimitClientTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	client, ok := l.clients[ip]
	if !ok {
		client = &rateLimitClient{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) handle(c *gin.Context) {
	if !l.allow(c.ClientIP()) {
		abort(c, newAPIError(http.StatusTooManyRequests, msgRateLimitExceeded))
		return
	}
	c.Next()
}
