package server

// Notes:
// - Handler tests run against a hand-written Previewer mock; the websocket
//   tests use a real Preview without a diagram renderer so no browser is
//   needed
// - Websocket reads carry deadlines so a broken push fails instead of
//   hanging the suite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	staticmd "github.com/alnah/go-staticmd"
)

// mockPreview is a scripted Previewer.
type mockPreview struct {
	mu        sync.Mutex
	input     staticmd.Input
	frame     staticmd.Frame
	hasFrame  bool
	updateErr error
	updates   []staticmd.Input
	exportRes *staticmd.Result
	exportErr error
	frames    chan staticmd.Frame
}

func (m *mockPreview) Update(in staticmd.Input) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.input = in
	m.updates = append(m.updates, in)
	return nil
}

func (m *mockPreview) Input() staticmd.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

func (m *mockPreview) Current() (staticmd.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame, m.hasFrame
}

func (m *mockPreview) Subscribe() (<-chan staticmd.Frame, func()) {
	if m.frames == nil {
		m.frames = make(chan staticmd.Frame, 1)
	}
	return m.frames, func() {}
}

func (m *mockPreview) Export(context.Context) (*staticmd.Result, error) {
	return m.exportRes, m.exportErr
}

func (m *mockPreview) recorded() []staticmd.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]staticmd.Input(nil), m.updates...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Error
}

// ---------------------------------------------------------------------------
// TestHandlers - JSON API and Shell
// ---------------------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	rec := do(t, New(&mockPreview{}, nil, Config{}), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestHandleShell(t *testing.T) {
	t.Parallel()

	rec := do(t, New(&mockPreview{}, nil, Config{Title: "notes.md <draft>"}), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"/ws"`, `id="preview-view"`, `href="/export"`, "<title>notes.md &lt;draft&gt;</title>"} {
		if !strings.Contains(body, want) {
			t.Errorf("shell missing %q", want)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandlePutDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		updateErr error
		wantCode  int
		wantError string
	}{
		{
			name:     "valid input accepted",
			body:     `{"body":"# Title","theme":"sepia","headerPos":"sticky"}`,
			wantCode: http.StatusAccepted,
		},
		{
			name:      "malformed JSON",
			body:      `{"body":`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid JSON",
		},
		{
			name:      "unknown field",
			body:      `{"markdown":"# Title"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid JSON",
		},
		{
			name:      "configuration error",
			body:      `{"theme":"neon"}`,
			updateErr: fmt.Errorf("%w: %q", staticmd.ErrUnknownTheme, "neon"),
			wantCode:  http.StatusBadRequest,
			wantError: "neon",
		},
		{
			name:      "preview closed",
			body:      `{"body":"x"}`,
			updateErr: staticmd.ErrPreviewClosed,
			wantCode:  http.StatusServiceUnavailable,
		},
		{
			name:      "too large",
			body:      `{"body":"` + strings.Repeat("a", MaxDocumentBytes) + `"}`,
			wantCode:  http.StatusRequestEntityTooLarge,
			wantError: "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &mockPreview{updateErr: tt.updateErr}
			rec := do(t, New(m, nil, Config{}), http.MethodPut, "/api/document", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusAccepted {
				got := m.recorded()
				want := []staticmd.Input{{Body: "# Title", Theme: staticmd.ThemeSepia, HeaderPosition: staticmd.PositionSticky}}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("updates mismatch (-want +got):\n%s", diff)
				}
				return
			}
			if msg := decodeError(t, rec); !strings.Contains(msg, tt.wantError) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.wantError)
			}
		})
	}
}

func TestHandleGetDocument(t *testing.T) {
	t.Parallel()

	m := &mockPreview{input: staticmd.Input{Body: "# Hi", Theme: staticmd.ThemeCyber}}
	rec := do(t, New(m, nil, Config{}), http.MethodGet, "/api/document", "")

	var got staticmd.Input
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if diff := cmp.Diff(m.input, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleOutline(t *testing.T) {
	t.Parallel()

	t.Run("no frame yet", func(t *testing.T) {
		t.Parallel()

		rec := do(t, New(&mockPreview{}, nil, Config{}), http.MethodGet, "/api/outline", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("current frame", func(t *testing.T) {
		t.Parallel()

		outline := []staticmd.OutlineEntry{
			{ID: "section-1", Text: "Intro", Level: 1},
			{ID: "section-2", Text: "Usage", Level: 2},
		}
		m := &mockPreview{hasFrame: true, frame: staticmd.Frame{Generation: 3, Outline: outline}}
		rec := do(t, New(m, nil, Config{}), http.MethodGet, "/api/outline", "")

		var got outlineResponse
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		want := outlineResponse{Generation: 3, Outline: outline}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("outline mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty outline is an array", func(t *testing.T) {
		t.Parallel()

		m := &mockPreview{hasFrame: true, frame: staticmd.Frame{Generation: 1}}
		rec := do(t, New(m, nil, Config{}), http.MethodGet, "/api/outline", "")
		if !strings.Contains(rec.Body.String(), `"outline":[]`) {
			t.Errorf("body = %s, want an empty array", rec.Body.String())
		}
	})
}

func TestHandleFrame(t *testing.T) {
	t.Parallel()

	m := &mockPreview{hasFrame: true, frame: staticmd.Frame{Generation: 2, HTML: "<div></div>", Diagrams: 1}}
	rec := do(t, New(m, nil, Config{}), http.MethodGet, "/api/frame", "")

	var got staticmd.Frame
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Generation != 2 || got.HTML != "<div></div>" || got.Diagrams != 1 {
		t.Errorf("frame = %+v", got)
	}
}

func TestHandleExport(t *testing.T) {
	t.Parallel()

	t.Run("download", func(t *testing.T) {
		t.Parallel()

		m := &mockPreview{
			input:     staticmd.Input{Theme: staticmd.ThemeSepia},
			exportRes: &staticmd.Result{HTML: "<!DOCTYPE html><html></html>"},
		}
		rec := do(t, New(m, nil, Config{}), http.MethodGet, "/export", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="static-page-sepia.html"` {
			t.Errorf("Content-Disposition = %q", got)
		}
		if rec.Body.String() != m.exportRes.HTML {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("default theme name", func(t *testing.T) {
		t.Parallel()

		m := &mockPreview{exportRes: &staticmd.Result{HTML: "x"}}
		rec := do(t, New(m, nil, Config{}), http.MethodGet, "/export", "")
		if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "static-page-modern.html") {
			t.Errorf("Content-Disposition = %q", got)
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		m := &mockPreview{exportErr: errors.New("boom")}
		rec := do(t, New(m, nil, Config{}), http.MethodGet, "/export", "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestFilesRoute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.svg"), []byte("<svg/>"), 0o600); err != nil {
		t.Fatal(err)
	}

	rec := do(t, New(&mockPreview{}, nil, Config{FilesDir: dir}), http.MethodGet, "/files/logo.svg", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "<svg/>" {
		t.Errorf("GET /files/logo.svg = %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, New(&mockPreview{}, nil, Config{}), http.MethodGet, "/files/logo.svg", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("without FilesDir status = %d, want 404", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	do(t, New(&mockPreview{}, log, Config{}), http.MethodGet, "/api/outline", "")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "request" || entry["method"] != "GET" || entry["path"] != "/api/outline" {
		t.Errorf("log entry = %v", entry)
	}
	if status, _ := entry["status"].(float64); status != http.StatusServiceUnavailable {
		t.Errorf("logged status = %v, want 503", entry["status"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "no origin", origin: "", want: true},
		{name: "same host", origin: "http://127.0.0.1:4173", want: true},
		{name: "same host other port", origin: "http://127.0.0.1:8080", want: false},
		{name: "other host", origin: "http://evil.example", want: false},
		{name: "malformed", origin: "127.0.0.1:4173", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:4173/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := sameOrigin(r); got != tt.want {
				t.Errorf("sameOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWebsocket - Live Frame Push
// ---------------------------------------------------------------------------

func newLivePreview(t *testing.T, body string) *staticmd.Preview {
	t.Helper()
	c, err := staticmd.NewCompiler()
	if err != nil {
		t.Fatalf("NewCompiler() unexpected error: %v", err)
	}
	p, err := staticmd.NewPreview(c, staticmd.Input{Body: body}, staticmd.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewPreview() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func dial(t *testing.T, h http.Handler) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() unexpected error: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() unexpected error: %v", err)
	}
	return msg
}

// readFrameContaining reads until a frame whose markup contains want.
func readFrameContaining(t *testing.T, conn *websocket.Conn, want string) staticmd.Frame {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Type == MessageFrame && strings.Contains(msg.Frame.HTML, want) {
			return *msg.Frame
		}
	}
}

func TestWebsocket_PushesFrames(t *testing.T) {
	t.Parallel()

	p := newLivePreview(t, "# First")
	conn := dial(t, New(p, nil, Config{}))

	hello := readMessage(t, conn)
	if hello.Type != MessageHello || hello.Client == "" {
		t.Fatalf("first message = %+v, want hello with a client id", hello)
	}

	first := readFrameContaining(t, conn, "First")
	if first.Generation != 1 {
		t.Errorf("first frame generation = %d, want 1", first.Generation)
	}

	if err := p.Update(staticmd.Input{Body: "# Second"}); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	second := readFrameContaining(t, conn, "Second")
	if second.Generation <= first.Generation {
		t.Errorf("second generation %d not after %d", second.Generation, first.Generation)
	}
}

func TestWebsocket_UpdateMessage(t *testing.T) {
	t.Parallel()

	p := newLivePreview(t, "# Before")
	conn := dial(t, New(p, nil, Config{}))
	readFrameContaining(t, conn, "Before")

	req := Request{Type: MessageUpdate, Input: staticmd.Input{Body: "# After", Theme: staticmd.ThemeCyber}}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON() unexpected error: %v", err)
	}
	readFrameContaining(t, conn, "After")

	if got := p.Input().Theme; got != staticmd.ThemeCyber {
		t.Errorf("preview theme = %q, want cyber", got)
	}
}

func TestWebsocket_RejectedRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "invalid JSON", payload: `{"type":`, want: "invalid JSON"},
		{name: "unknown type", payload: `{"type":"scroll"}`, want: "unknown message type"},
		{name: "invalid input", payload: `{"type":"update","input":{"theme":"neon"}}`, want: "neon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newLivePreview(t, "# Doc")
			conn := dial(t, New(p, nil, Config{}))
			readFrameContaining(t, conn, "Doc")

			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("WriteMessage() unexpected error: %v", err)
			}
			for {
				msg := readMessage(t, conn)
				if msg.Type != MessageError {
					continue
				}
				if !strings.Contains(msg.Error, tt.want) {
					t.Errorf("error = %q, want it to contain %q", msg.Error, tt.want)
				}
				return
			}
		})
	}
}

func TestWebsocket_PreviewClosed(t *testing.T) {
	t.Parallel()

	p := newLivePreview(t, "# Doc")
	conn := dial(t, New(p, nil, Config{}))
	readFrameContaining(t, conn, "Doc")

	if err := p.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("ReadMessage() error = %v, want going-away close", err)
		}
		return
	}
}

func TestWebsocket_CrossOriginRefused(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(New(&mockPreview{}, nil, Config{}))
	t.Cleanup(ts.Close)

	header := http.Header{"Origin": []string{"http://evil.example"}}
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("Dial() from another origin should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
	if resp != nil {
		resp.Body.Close()
	}
}

// ---------------------------------------------------------------------------
// TestServe - Listen and Graceful Shutdown
// ---------------------------------------------------------------------------

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(&mockPreview{}, nil, Config{}).Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health unexpected error: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after shutdown", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestListen_AddressInUse(t *testing.T) {
	t.Parallel()

	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() unexpected error: %v", err)
	}
	defer ln.Close()

	if _, err := Listen(ln.Addr().String()); err == nil {
		t.Error("Listen() on a bound address should fail")
	}
}
