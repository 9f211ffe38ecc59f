package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/server/mocks"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		Host:            "127.0.0.1",
		Port:            0,
		Shards:          4,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
		EnableCORS:      true,
	}
}

func newTestServer(t *testing.T, svc SequenceService, opts ...Option) *httptest.Server {
	t.Helper()
	opts = append([]Option{WithLogger(newTestLogger())}, opts...)
	s := New(svc, testConfig(), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string) (int, string, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body), resp.Header
}

// TestServer_Scenario runs the next x4, list, back, list walk over HTTP.
func TestServer_Scenario(t *testing.T) {
	ts := newTestServer(t, sequence.New())

	for i, want := range []string{"1", "1", "2", "3"} {
		code, body, hdr := do(t, "POST", ts.URL+"/api/fibonacci/next/u")
		if code != http.StatusOK {
			t.Fatalf("next #%d status = %d, want 200", i+1, code)
		}
		if got := strings.TrimSpace(body); got != want {
			t.Errorf("next #%d body = %q, want %q", i+1, got, want)
		}
		if ct := hdr.Get("Content-Type"); ct != "application/json" {
			t.Errorf("next Content-Type = %q, want application/json", ct)
		}
	}

	code, body, _ := do(t, "GET", ts.URL+"/api/fibonacci/u")
	if code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", code)
	}
	var seq []int64
	if err := json.Unmarshal([]byte(body), &seq); err != nil {
		t.Fatalf("list body %q is not a JSON array: %v", body, err)
	}
	if len(seq) != 4 || seq[0] != 1 || seq[1] != 1 || seq[2] != 2 || seq[3] != 3 {
		t.Errorf("list = %v, want [1 1 2 3]", seq)
	}

	code, body, _ = do(t, "POST", ts.URL+"/api/fibonacci/back/u")
	if code != http.StatusOK || body != "OK" {
		t.Errorf("back = %d %q, want 200 \"OK\"", code, body)
	}

	_, body, _ = do(t, "GET", ts.URL+"/api/fibonacci/u")
	if got := strings.TrimSpace(body); got != "[1,1,2]" {
		t.Errorf("list after back = %s, want [1,1,2]", got)
	}
}

func TestServer_DomainErrors(t *testing.T) {
	ts := newTestServer(t, sequence.New())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"back on unknown client", "POST", "/api/fibonacci/back/ghost", "Back limit reached"},
		{"list on unknown client", "GET", "/api/fibonacci/ghost", "Client does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, hdr := do(t, tt.method, ts.URL+tt.path)
			if code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", code)
			}
			if body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
			if !strings.HasPrefix(hdr.Get("Content-Type"), "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", hdr.Get("Content-Type"))
			}
		})
	}

	t.Run("back at index zero", func(t *testing.T) {
		do(t, "POST", ts.URL+"/api/fibonacci/next/zero")
		code, body, _ := do(t, "POST", ts.URL+"/api/fibonacci/back/zero")
		if code != http.StatusBadRequest || body != "Back limit reached" {
			t.Errorf("back = %d %q, want 400 \"Back limit reached\"", code, body)
		}
	})
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, sequence.New())

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/fibonacci/next/u"},
		{"GET", "/api/fibonacci/back/u"},
		{"POST", "/api/fibonacci/u"},
		{"DELETE", "/api/fibonacci/u"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			code, _, _ := do(t, tt.method, ts.URL+tt.path)
			if code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", code)
			}
		})
	}
}

func TestServer_ClientIDWithEscapes(t *testing.T) {
	ts := newTestServer(t, sequence.New())

	do(t, "POST", ts.URL+"/api/fibonacci/next/user%20one")
	do(t, "POST", ts.URL+"/api/fibonacci/next/user%20one")
	_, body, _ := do(t, "GET", ts.URL+"/api/fibonacci/user%20one")
	if got := strings.TrimSpace(body); got != "[1,1]" {
		t.Errorf("list = %s, want [1,1]", got)
	}
}

func TestServer_MockedService(t *testing.T) {
	t.Run("next forwards the client id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSequenceService(ctrl)
		svc.EXPECT().Stats().Return(sequence.Stats{}).AnyTimes()
		svc.EXPECT().Next("alice").Return(int64(7540113804746346429))

		ts := newTestServer(t, svc)
		code, body, _ := do(t, "POST", ts.URL+"/api/fibonacci/next/alice")
		if code != http.StatusOK || strings.TrimSpace(body) != "7540113804746346429" {
			t.Errorf("next = %d %q", code, body)
		}
	})

	t.Run("wrapped domain error is still a 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSequenceService(ctrl)
		svc.EXPECT().Stats().Return(sequence.Stats{}).AnyTimes()
		svc.EXPECT().List("bob").Return(nil, apperrors.WrapError(apperrors.ClientNotFoundError{ClientID: "bob"}, "lookup"))

		ts := newTestServer(t, svc)
		code, body, _ := do(t, "GET", ts.URL+"/api/fibonacci/bob")
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
		if !strings.Contains(body, "Client does not exist") {
			t.Errorf("body = %q, want the domain message", body)
		}
	})

	t.Run("unexpected error is a 500 without details", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockSequenceService(ctrl)
		svc.EXPECT().Stats().Return(sequence.Stats{}).AnyTimes()
		svc.EXPECT().Back("carol").Return("", errors.New("disk on fire"))

		ts := newTestServer(t, svc)
		code, body, _ := do(t, "POST", ts.URL+"/api/fibonacci/back/carol")
		if code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", code)
		}
		if strings.Contains(body, "disk on fire") {
			t.Error("internal error details must not leak to the client")
		}
	})
}

func TestServer_Health(t *testing.T) {
	engine := sequence.New()
	ts := newTestServer(t, engine)
	for i := 0; i < 10; i++ {
		engine.Next("a")
	}
	engine.Next("b")

	code, body, _ := do(t, "GET", ts.URL+"/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var h healthResponse
	if err := json.Unmarshal([]byte(body), &h); err != nil {
		t.Fatalf("health body %q: %v", body, err)
	}
	if h.Status != "healthy" || h.Clients != 2 || h.CachedValues != 10 {
		t.Errorf("health = %+v, want healthy with 2 clients and 10 cached values", h)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, sequence.New())
	do(t, "POST", ts.URL+"/api/fibonacci/next/m")
	do(t, "GET", ts.URL+"/api/fibonacci/ghost")

	code, body, _ := do(t, "GET", ts.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	for _, want := range []string{
		`fibseq_requests_total{code="200",route="POST /api/fibonacci/next/{clientId}"} 1`,
		`fibseq_requests_total{code="400",route="GET /api/fibonacci/{clientId}"} 1`,
		`fibseq_domain_errors_total{kind="client_not_found",operation="list"} 1`,
		"fibseq_clients 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics should contain %s", want)
		}
	}
}

// TestServer_ConcurrentNext hits one client from many connections and
// checks that every index was handed out exactly once.
func TestServer_ConcurrentNext(t *testing.T) {
	engine := sequence.New()
	ts := newTestServer(t, engine)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/fibonacci/next/shared", "", http.NoBody)
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			resp.Body.Close()
		}()
	}
	wg.Wait()

	seq, err := engine.List("shared")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(seq) != n {
		t.Errorf("len(List) = %d, want %d", len(seq), n)
	}
}

// recordingTracer remembers span names and otherwise behaves like noop.
type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	names []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func TestServer_TracingSpans(t *testing.T) {
	tracer := &recordingTracer{}
	ts := newTestServer(t, sequence.New(), WithTracer(tracer))

	do(t, "POST", ts.URL+"/api/fibonacci/next/traced")
	do(t, "GET", ts.URL+"/api/fibonacci/traced")

	tracer.mu.Lock()
	defer tracer.mu.Unlock()
	want := []string{RouteNext, RouteList}
	if len(tracer.names) != len(want) {
		t.Fatalf("spans = %v, want %v", tracer.names, want)
	}
	for i := range want {
		if tracer.names[i] != want[i] {
			t.Errorf("span[%d] = %q, want %q", i, tracer.names[i], want[i])
		}
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := New(sequence.New(), testConfig(), WithLogger(newTestLogger()))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	code, body, _ := do(t, "POST", url+"/api/fibonacci/next/live")
	if code != http.StatusOK || strings.TrimSpace(body) != "1" {
		t.Errorf("next = %d %q, want 200 1", code, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancel")
	}
}

func TestServer_ShutdownTimeoutClosesStuckRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockSequenceService(ctrl)
	svc.EXPECT().Stats().Return(sequence.Stats{}).AnyTimes()

	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	svc.EXPECT().Next("slow").DoAndReturn(func(string) int64 {
		close(entered)
		<-release
		return 1
	})

	cfg := testConfig()
	cfg.ShutdownTimeout = 50 * time.Millisecond
	s := New(svc, cfg, WithLogger(newTestLogger()))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/fibonacci/next/slow", "", http.NoBody)
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil when the grace period expires", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the shutdown timeout")
	}
}

func TestServer_StartListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	s := New(sequence.New(), cfg, WithLogger(newTestLogger()))

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() on a busy port should fail")
	}
}

func TestRoutes(t *testing.T) {
	routes := Routes()
	if len(routes) != 5 {
		t.Fatalf("Routes() = %v", routes)
	}
	if routes[0] != RouteNext || routes[1] != RouteBack || routes[2] != RouteList {
		t.Errorf("API routes out of order: %v", routes)
	}
}
