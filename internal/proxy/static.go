package proxy

import (
	"context"
	"fmt"
	"sync"

	"github.com/LeJamon/goOracleHub/internal/hub"
)

// StaticQuoter serves scripted quotes. Used by tests and by standalone mode,
// where no real proxies are reachable.
type StaticQuoter struct {
	mu       sync.RWMutex
	quotes   map[string]hub.Quote
	failures map[string]struct{}
}

func NewStaticQuoter() *StaticQuoter {
	return &StaticQuoter{
		quotes:   make(map[string]hub.Quote),
		failures: make(map[string]struct{}),
	}
}

func quoteKey(proxyAddr, symbol string) string {
	return proxyAddr + "|" + symbol
}

// SetQuote scripts a successful quote for the proxy/symbol pair
func (s *StaticQuoter) SetQuote(proxyAddr, symbol string, quote hub.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, quoteKey(proxyAddr, symbol))
	s.quotes[quoteKey(proxyAddr, symbol)] = quote
}

// SetFailure scripts a call-out failure for the proxy/symbol pair
func (s *StaticQuoter) SetFailure(proxyAddr, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotes, quoteKey(proxyAddr, symbol))
	s.failures[quoteKey(proxyAddr, symbol)] = struct{}{}
}

// Quote returns the scripted quote, or an error for scripted failures and
// pairs that were never scripted
func (s *StaticQuoter) Quote(ctx context.Context, proxyAddr string, symbol string) (hub.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := quoteKey(proxyAddr, symbol)
	if _, failed := s.failures[key]; failed {
		return hub.Quote{}, fmt.Errorf("proxy %s failed to quote %s", proxyAddr, symbol)
	}
	if quote, ok := s.quotes[key]; ok {
		return quote, nil
	}
	return hub.Quote{}, fmt.Errorf("proxy %s has no data for %s", proxyAddr, symbol)
}
