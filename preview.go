package staticmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-staticmd/internal/pipeline"
)

// Preview keeps a live rendering of one document. Every Update starts a new
// generation; after the debounce period a pass renders the latest input.
// A pass is applied only if its generation is still current when it
// finishes, so a slow superseded pass can never overwrite a newer frame.
type Preview struct {
	compiler *Compiler
	cfg      previewConfig
	diagrams *pipeline.DiagramProcessor
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	input      Input
	gen        uint64
	passCancel context.CancelFunc
	timer      *time.Timer
	current    Frame
	hasFrame   bool
	subs       map[uint64]chan Frame
	nextSub    uint64
	closed     bool
}

// NewPreview validates initial and starts rendering it immediately.
// Close the preview to stop pending passes and release subscribers.
func NewPreview(c *Compiler, initial Input, opts ...PreviewOption) (*Preview, error) {
	if c == nil {
		panic("staticmd: NewPreview compiler must not be nil")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}

	cfg := previewConfig{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Preview{
		compiler: c,
		cfg:      cfg,
		logger:   c.cfg.logger,
		ctx:      ctx,
		cancel:   cancel,
		input:    initial,
		gen:      1,
		subs:     make(map[uint64]chan Frame),
	}
	if cfg.renderer != nil {
		p.diagrams = pipeline.NewDiagramProcessor(cfg.renderer, c.cfg.concurrency)
	}

	p.mu.Lock()
	p.startLocked(p.gen)
	p.mu.Unlock()
	return p, nil
}

// Update replaces the input and schedules a pass after the debounce
// period. Invalid input is rejected and leaves the preview unchanged.
func (p *Preview) Update(in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPreviewClosed
	}

	p.input = in
	p.gen++
	p.cancelPassLocked()

	gen := p.gen
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.cfg.debounce, func() {
		p.startPass(gen)
	})
	return nil
}

// Refresh re-renders the current input now, skipping the debounce.
func (p *Preview) Refresh() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPreviewClosed
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	p.startLocked(p.gen)
	return nil
}

// Subscribe returns a channel receiving every applied frame, starting with
// the current one if any. The channel holds only the latest frame; a slow
// reader skips intermediate ones. It is closed by unsubscribe or Close.
func (p *Preview) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	if p.hasFrame {
		ch <- p.current
	}

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
}

// Current returns the latest applied frame. It reports false before the
// first pass completes.
func (p *Preview) Current() (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.hasFrame
}

// Input returns the latest accepted input.
func (p *Preview) Input() Input {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// Generation returns the generation of the latest accepted input.
func (p *Preview) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Export compiles the latest accepted input as a static document.
func (p *Preview) Export(ctx context.Context) (*Result, error) {
	return p.compiler.Compile(ctx, p.Input())
}

// Close stops pending and in-flight passes, closes every subscriber
// channel and waits for running passes to return.
func (p *Preview) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.cancelPassLocked()
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	return nil
}

// startPass runs when a debounce timer fires. A timer belonging to an
// older generation does nothing.
func (p *Preview) startPass(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.gen {
		return
	}
	p.startLocked(gen)
}

// startLocked launches the pass for gen. Callers hold p.mu.
func (p *Preview) startLocked(gen uint64) {
	if p.closed {
		return
	}
	p.cancelPassLocked()

	ctx, cancel := context.WithCancel(p.ctx)
	p.passCancel = cancel
	in := p.input

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		p.run(ctx, gen, in)
	}()
}

// cancelPassLocked cancels the in-flight pass, if any. Callers hold p.mu.
func (p *Preview) cancelPassLocked() {
	if p.passCancel != nil {
		p.passCancel()
		p.passCancel = nil
	}
}

// run renders one snapshot and offers the frame for application.
func (p *Preview) run(ctx context.Context, gen uint64, in Input) {
	start := time.Now()
	p.logger.Debug("preview pass started", slog.Uint64("generation", gen))

	frame, err := p.render(ctx, gen, in)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Debug("preview pass superseded", slog.Uint64("generation", gen))
			return
		}
		p.logger.Error("preview pass failed", slog.Uint64("generation", gen), slog.Any("error", err))
		frame = Frame{Generation: gen, Error: err.Error()}
	}
	frame.Duration = time.Since(start)

	if !p.apply(frame) {
		p.logger.Debug("preview pass discarded", slog.Uint64("generation", gen))
		return
	}
	p.logger.Debug("preview pass applied",
		slog.Uint64("generation", gen),
		slog.Int("diagrams", frame.Diagrams),
		slog.Int("failed_diagrams", frame.FailedDiagrams),
		slog.Duration("duration", frame.Duration))
}

// render runs the interactive pass, recovering internal panics.
func (p *Preview) render(ctx context.Context, gen uint64, in Input) (frame Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame, err = Frame{}, fmt.Errorf("internal error: %v", r)
		}
	}()

	res, err := p.compiler.render(ctx, in, renderPass{
		mode:      pipeline.ModeInteractive,
		idPrefix:  fmt.Sprintf("diagram-%d", gen),
		diagrams:  p.diagrams,
		assetBase: p.cfg.assetBase,
	})
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Generation:     gen,
		HTML:           res.HTML,
		Outline:        res.Outline,
		Diagrams:       res.Diagrams,
		FailedDiagrams: res.FailedDiagrams,
		Fallbacks:      res.Fallbacks,
	}, nil
}

// apply publishes frame if its generation is still current.
func (p *Preview) apply(frame Frame) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || frame.Generation != p.gen {
		return false
	}

	p.current = frame
	p.hasFrame = true
	for _, ch := range p.subs {
		// Buffer of one: replace an unread frame with the newer one.
		select {
		case <-ch:
		default:
		}
		ch <- frame
	}
	return true
}
