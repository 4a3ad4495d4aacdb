package middleware

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jiaamasum/crowdfunding-trading-platform-ctr/utils"
)

// In-memory per-IP fixed-window rate limiter with trusted-proxy support.
// Good enough for a single instance; swap for Redis counters when scaling out.

func getEnvDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return def
}

type IPRateLimiter struct {
	maxReq      int
	window      time.Duration
	mu          sync.Mutex
	state       map[string][]int64
	trustedCIDR []string
}

// NewIPRateLimiter limits each client IP to maxReq requests per window.
func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		maxReq: maxReq,
		window: window,
		state:  make(map[string][]int64),
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop(getEnvDuration("RATE_CLEANUP_SECONDS", 60*time.Second))
	return l
}

// clientIPGeneric returns the client IP. X-Forwarded-For / X-Real-IP headers
// are honored only when the remote address is inside one of the trusted CIDRs
// or exactly matches a trusted IP.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware applies the per-IP limit and sets rate-limit headers.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		now := time.Now().UnixNano()
		cutoff := now - int64(l.window)

		l.mu.Lock()
		arr := l.state[ip][:0:0]
		for _, ts := range l.state[ip] {
			if ts >= cutoff {
				arr = append(arr, ts)
			}
		}
		arr = append(arr, now)
		l.state[ip] = arr
		count := len(arr)
		oldest := arr[0]
		l.mu.Unlock()

		remaining := l.maxReq - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.maxReq))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > l.maxReq {
			retryAfter := int((oldest + int64(l.window) - now) / int64(time.Second))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
				Success: false,
				Message: "Too many requests, try again later",
				Data:    map[string]interface{}{"retry_after_seconds": retryAfter},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop(tick time.Duration) {
	for range time.Tick(tick) {
		cutoff := time.Now().UnixNano() - int64(l.window)
		l.mu.Lock()
		for ip, arr := range l.state {
			var kept []int64
			for _, ts := range arr {
				if ts >= cutoff {
					kept = append(kept, ts)
				}
			}
			if len(kept) == 0 {
				delete(l.state, ip)
			} else {
				l.state[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}
