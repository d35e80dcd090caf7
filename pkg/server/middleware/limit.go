/* Copyright 2025 Daylily Catalog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/daylilycatalog/catalog/pkg/server/log"
	"golang.org/x/time/rate"
)

const (
	// serverRateLimitPerSecond is the max requests per second the server will accept per IP
	serverRateLimitPerSecond = 50
	// serverRateLimitBurst is the burst capacity for rate limiting
	serverRateLimitBurst = 100
	// visitorTTL is how long an idle visitor is remembered
	visitorTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits the request rate of every client IP independently
type RateLimiter struct {
	limit rate.Limit
	burst int

	mtx      sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter creates a rate limiter allowing perSecond requests per
// second with the given burst for each visitor
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Every(time.Second / time.Duration(perSecond)),
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
}

var defaultLimiter = newDefaultLimiter()

func newDefaultLimiter() *RateLimiter {
	rl := NewRateLimiter(serverRateLimitPerSecond, serverRateLimitBurst)
	go func() {
		for range time.Tick(time.Minute) {
			rl.cleanup(time.Now())
		}
	}()

	return rl
}

// getVisitor returns the limiter of the visitor with the given identifier,
// creating it on first sight
func (rl *RateLimiter) getVisitor(identifier string, now time.Time) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, ok := rl.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[identifier] = v
	}
	v.lastSeen = now

	return v.limiter
}

// cleanup forgets visitors idle for longer than visitorTTL
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	for identifier, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, identifier)
		}
	}
}

// lookupIP returns the request's IP without the port
func lookupIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		parts := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Limit is a middleware to rate limit the handler
func (rl *RateLimiter) Limit(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := lookupIP(r)

		if !rl.getVisitor(identifier, time.Now()).Allow() {
			log.WithFields(log.Fields{
				"ip": identifier,
			}).Warn("Too many requests")

			w.Header().Set("Retry-After", "1")
			RespondJSON(w, http.StatusTooManyRequests, map[string]string{"message": "too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ApplyLimit applies rate limit conditionally using the global limiter
func ApplyLimit(h http.HandlerFunc, rateLimit bool) http.Handler {
	if !rateLimit {
		return h
	}

	return defaultLimiter.Limit(h)
}
