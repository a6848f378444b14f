package bridge

import (
	"net"
	"net/http"
	"strings"
	"sync"
)

// Limiter caps concurrent bridge connections overall and per client address.
type Limiter struct {
	mu         sync.Mutex
	perAddr    map[string]int
	total      int
	maxTotal   int
	maxPerAddr int
}

// NewLimiter returns a limiter. A zero cap is unlimited.
func NewLimiter(maxTotal, maxPerAddr int) *Limiter {
	return &Limiter{
		perAddr:    make(map[string]int),
		maxTotal:   maxTotal,
		maxPerAddr: maxPerAddr,
	}
}

// Acquire takes a slot for addr, reporting false when a cap is reached.
func (l *Limiter) Acquire(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxTotal > 0 && l.total >= l.maxTotal {
		return false
	}
	if l.maxPerAddr > 0 && l.perAddr[addr] >= l.maxPerAddr {
		return false
	}
	l.perAddr[addr]++
	l.total++
	return true
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := l.perAddr[addr]; n > 1 {
		l.perAddr[addr] = n - 1
	} else {
		delete(l.perAddr, addr)
	}
	if l.total > 0 {
		l.total--
	}
}

// Active returns the number of held slots.
func (l *Limiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// clientAddr is the caller's IP, honouring proxy headers.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
