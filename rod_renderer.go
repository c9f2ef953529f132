package staticmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-staticmd/internal/pipeline"
	"github.com/alnah/go-staticmd/internal/process"
)

// DefaultRenderTimeout bounds one diagram render, page setup included.
const DefaultRenderTimeout = 30 * time.Second

// renderScript initializes mermaid for the requested palette and typeface
// and renders one definition. Initialization runs per call so concurrent
// pages never share a renderer configuration.
const renderScript = `async (id, source, palette, font) => {
  mermaid.initialize({ startOnLoad: false, theme: palette, fontFamily: font, securityLevel: "strict" });
  const out = await mermaid.render(id, source);
  return out.svg;
}`

// RodDiagramRenderer renders diagrams in headless Chrome pages that load
// the same diagram library the exported document uses. Rod downloads
// Chromium on first use when no browser binary is configured.
type RodDiagramRenderer struct {
	timeout   time.Duration
	bin       string
	noSandbox bool
	pages     int
	logger    *slog.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	pool     *PagePool
	closed   bool
}

// RendererOption configures a RodDiagramRenderer.
type RendererOption func(*RodDiagramRenderer)

// WithRenderTimeout sets the per-diagram timeout.
func WithRenderTimeout(d time.Duration) RendererOption {
	if d <= 0 {
		panic("staticmd: WithRenderTimeout duration must be positive")
	}
	return func(r *RodDiagramRenderer) {
		r.timeout = d
	}
}

// WithBrowserBin uses a pre-installed browser instead of downloading one.
func WithBrowserBin(path string) RendererOption {
	return func(r *RodDiagramRenderer) {
		r.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, required in most containers.
func WithNoSandbox(enabled bool) RendererOption {
	return func(r *RodDiagramRenderer) {
		r.noSandbox = enabled
	}
}

// WithPages sets how many pages render concurrently. Zero picks a size
// from the available CPUs.
func WithPages(n int) RendererOption {
	if n < 0 {
		panic("staticmd: WithPages count must not be negative")
	}
	return func(r *RodDiagramRenderer) {
		r.pages = n
	}
}

// WithRendererLogger sets the logger for browser lifecycle events.
func WithRendererLogger(l *slog.Logger) RendererOption {
	if l == nil {
		panic("staticmd: WithRendererLogger logger must not be nil")
	}
	return func(r *RodDiagramRenderer) {
		r.logger = l
	}
}

// NewRodDiagramRenderer creates a renderer. The browser starts on the
// first render, not here.
//
// Environment: ROD_BROWSER_BIN selects the browser binary; CI=true or
// ROD_NO_SANDBOX=1 disables the sandbox. Options take precedence.
func NewRodDiagramRenderer(opts ...RendererOption) *RodDiagramRenderer {
	bin := os.Getenv("ROD_BROWSER_BIN")
	r := &RodDiagramRenderer{
		timeout:   DefaultRenderTimeout,
		bin:       bin,
		noSandbox: os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "",
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderDiagram renders one diagram definition to SVG markup.
func (r *RodDiagramRenderer) RenderDiagram(ctx context.Context, req DiagramRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pool, err := r.ensurePool(ctx)
	if err != nil {
		return "", err
	}

	page, err := pool.Acquire(ctx)
	if err != nil {
		return "", err
	}

	svg, err := page.Render(ctx, r.timeout, req)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		// The evaluation may still be running inside the page
		pool.Discard(page)
		return "", err
	}
	pool.Release(page)
	return svg, err
}

// ensurePool lazily launches the browser and creates the page pool.
func (r *RodDiagramRenderer) ensurePool(ctx context.Context) (*PagePool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.closed {
		return nil, ErrRendererClosed
	}
	if r.pool != nil {
		return r.pool, nil
	}

	// The browser outlives the request that started it, so ctx only gates
	// entry here.
	l := launcher.New()
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	if r.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	size := ResolvePoolSize(r.pages)
	r.pool = NewPagePool(size, r.newPage)
	r.logger.Info("diagram browser started", slog.Int("pid", l.PID()), slog.Int("pages", size))
	return r.pool, nil
}

// newPage opens a blank page and loads the diagram library into it.
func (r *RodDiagramRenderer) newPage(ctx context.Context) (DiagramPage, error) {
	r.mu.Lock()
	browser := r.browser
	r.mu.Unlock()
	if browser == nil {
		return nil, ErrRendererClosed
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout := effectiveTimeout(ctx, r.timeout)
	if timeout <= 0 {
		_ = page.Close()
		return nil, context.DeadlineExceeded
	}
	if err := page.Context(ctx).Timeout(timeout).AddScriptTag(pipeline.MermaidScriptURL, ""); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: loading diagram library: %v", ErrPageLoad, err)
	}
	return &rodPage{page: page}, nil
}

// Close releases pages and terminates the browser process tree.
func (r *RodDiagramRenderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	pool, browser, l := r.pool, r.browser, r.launcher
	r.pool, r.browser, r.launcher = nil, nil, nil
	r.mu.Unlock()

	var errs []error
	if pool != nil {
		if err := pool.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if browser != nil {
		if err := browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if l != nil {
		// Chrome forks helpers; kill the whole group, then let the
		// launcher clean up its own state.
		process.Terminate(l.PID(), l.Kill)
	}
	return errors.Join(errs...)
}

// rodPage is a DiagramPage backed by one browser tab.
type rodPage struct {
	page *rod.Page
}

// Render evaluates the render script. A request deadline shorter than
// timeout wins.
func (p *rodPage) Render(ctx context.Context, timeout time.Duration, req DiagramRequest) (string, error) {
	timeout = effectiveTimeout(ctx, timeout)
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}

	res, err := p.page.Context(ctx).Timeout(timeout).Eval(renderScript,
		req.ID, req.Source, req.Config.Palette, req.Config.FontFamily)
	if err != nil {
		return "", cleanEvalError(err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (p *rodPage) Close() error {
	return p.page.Close()
}

// effectiveTimeout returns the smaller of timeout and the time left before
// ctx's deadline.
func effectiveTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			return left
		}
	}
	return timeout
}

// cleanEvalError keeps the first line of a page evaluation error; mermaid
// parse errors carry the whole offending source after it.
func cleanEvalError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return errors.New(msg)
}
