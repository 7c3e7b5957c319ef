package client

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const DefaultDebounce = 300 * time.Millisecond

type ProductLister interface {
	ListProducts(ctx context.Context, q transport.ProductQuery) (*transport.ProductPage, error)
}

// Searcher debounces product searches. Each call to Search supersedes the
// previous one: a pending timer is stopped and an in-flight request is
// cancelled, so only the latest query ever reaches onResult.
type Searcher struct {
	api      ProductLister
	delay    time.Duration
	onResult func(query string, page *transport.ProductPage)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	seq    uint64
}

func NewSearcher(api ProductLister, delay time.Duration, onResult func(query string, page *transport.ProductPage)) *Searcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Searcher{api: api, delay: delay, onResult: onResult}
}

func (s *Searcher) Search(ctx context.Context, q transport.ProductQuery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.seq++
	seq := s.seq

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.timer = time.AfterFunc(s.delay, func() { s.run(runCtx, seq, q) })
}

// Stop drops any pending or in-flight search.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.seq++
}

func (s *Searcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) run(ctx context.Context, seq uint64, q transport.ProductQuery) {
	page, err := s.api.ListProducts(ctx, q)
	if err != nil || page == nil {
		page = &transport.ProductPage{Items: []models.Product{}, Page: 1}
	}

	s.mu.Lock()
	current := seq == s.seq
	s.mu.Unlock()
	if !current || ctx.Err() != nil {
		return
	}
	s.onResult(q.Query, page)
}
