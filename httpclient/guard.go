package httpclient

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// breakerSet lazily creates one circuit breaker per dial address.
type breakerSet struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
	failures int
	timeout  time.Duration
}

func newBreakerSet(failures int, timeout time.Duration) *breakerSet {
	return &breakerSet{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		failures: failures,
		timeout:  timeout,
	}
}

// get returns the breaker for addr, or nil when breaking is disabled.
func (s *breakerSet) get(addr string) *gobreaker.CircuitBreaker {
	if s == nil || s.failures <= 0 {
		return nil
	}

	s.mu.RLock()
	breaker, exists := s.breakers[addr]
	s.mu.RUnlock()
	if exists {
		return breaker
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if breaker, exists := s.breakers[addr]; exists {
		return breaker
	}

	failures := uint32(s.failures)
	breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        addr,
		MaxRequests: 1,
		Interval:    s.timeout,
		Timeout:     s.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			recordBreakerState(name, to)
			clientLog.WithFields("addr", name).Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	s.breakers[addr] = breaker
	return breaker
}

// limiterSet lazily creates one token bucket per host.
type limiterSet struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perSec   int
}

func newLimiterSet(perSec int) *limiterSet {
	return &limiterSet{limiters: make(map[string]*rate.Limiter), perSec: perSec}
}

// get returns the limiter for host, or nil when limiting is disabled.
func (s *limiterSet) get(host string) *rate.Limiter {
	if s == nil || s.perSec <= 0 {
		return nil
	}

	s.mu.RLock()
	limiter, exists := s.limiters[host]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists := s.limiters[host]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(s.perSec), s.perSec)
	s.limiters[host] = limiter
	return limiter
}
