package staticmd

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one page is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent diagram pages per browser.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// DiagramPage is one browser page able to render diagrams, one at a time.
type DiagramPage interface {
	Render(ctx context.Context, timeout time.Duration, req DiagramRequest) (string, error)
	Close() error
}

// PagePool hands out diagram pages for concurrent renders.
// Pages are created lazily on first acquire to avoid startup delay.
type PagePool struct {
	size    int
	create  func(context.Context) (DiagramPage, error)
	pages   []DiagramPage
	sem     chan DiagramPage
	freed   chan struct{} // a discarded page left a slot to create into
	mu      sync.Mutex
	created int
	closed  bool
}

// NewPagePool creates a pool with capacity for n pages built by create.
func NewPagePool(n int, create func(context.Context) (DiagramPage, error)) *PagePool {
	if create == nil {
		panic("staticmd: NewPagePool create must not be nil")
	}
	if n < 1 {
		n = 1
	}

	return &PagePool{
		size:   n,
		create: create,
		pages:  make([]DiagramPage, 0, n),
		sem:    make(chan DiagramPage, n),
		freed:  make(chan struct{}, n),
	}
}

// Acquire gets a page from the pool, creating one if capacity allows.
// Blocks until a page is released, a slot is freed by Discard, or ctx is
// done.
func (p *PagePool) Acquire(ctx context.Context) (DiagramPage, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrRendererClosed
		}

		// Idle page first
		select {
		case pg := <-p.sem:
			p.mu.Unlock()
			return pg, nil
		default:
		}

		if p.created < p.size {
			p.created++
			p.mu.Unlock()
			return p.createPage(ctx)
		}
		p.mu.Unlock()

		// All slots taken, wait for a release or a freed slot
		select {
		case pg, ok := <-p.sem:
			if !ok || p.isClosed() {
				return nil, ErrRendererClosed
			}
			return pg, nil
		case <-p.freed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// createPage fills a slot already counted in created.
func (p *PagePool) createPage(ctx context.Context) (DiagramPage, error) {
	// Create outside the lock; page setup loads the diagram library
	pg, err := p.create(ctx)
	if err != nil {
		p.mu.Lock()
		p.freeSlot()
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = pg.Close()
		return nil, ErrRendererClosed
	}
	p.pages = append(p.pages, pg)
	return pg, nil
}

// freeSlot gives a slot back and wakes one blocked Acquire. Callers hold mu.
func (p *PagePool) freeSlot() {
	p.created--
	if p.closed {
		return
	}
	select {
	case p.freed <- struct{}{}:
	default:
	}
}

func (p *PagePool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Release returns a page to the pool.
// The send happens under the lock so it cannot race with Close; the
// channel has room for every page, so it never blocks.
func (p *PagePool) Release(pg DiagramPage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- pg:
	default:
	}
}

// Discard closes a page that can no longer be trusted (a render timed out
// mid-evaluation) and frees its slot for a fresh one.
func (p *PagePool) Discard(pg DiagramPage) {
	p.mu.Lock()
	for i, existing := range p.pages {
		if existing == pg {
			p.pages = append(p.pages[:i], p.pages[i+1:]...)
			p.freeSlot()
			break
		}
	}
	p.mu.Unlock()

	_ = pg.Close()
}

// Close releases all pages. Idle pages still queued are dropped so no
// Acquire can return a closed page.
// Returns an aggregated error if several pages fail to close.
func (p *PagePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	for drained := false; !drained; {
		select {
		case <-p.sem:
		default:
			drained = true
		}
	}
	close(p.sem)
	close(p.freed)
	pages := p.pages
	p.pages = nil
	p.mu.Unlock()

	var errs []error
	for _, pg := range pages {
		if err := pg.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *PagePool) Size() int {
	return p.size
}

// ResolvePoolSize determines the page count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
