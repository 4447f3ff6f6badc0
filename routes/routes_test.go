package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"eduguide/handlers"
	"eduguide/mockapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProxy(t *testing.T, backend http.Handler) (*httptest.Server, *httptest.Server) {
	t.Helper()
	be := httptest.NewServer(backend)
	t.Cleanup(be.Close)

	h, err := handlers.NewProxyHandler(be.URL, nil)
	if err != nil {
		t.Fatalf("NewProxyHandler: %v", err)
	}
	px := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(px.Close)
	return px, be
}

func TestProxyForwardsAPIRequests(t *testing.T) {
	px, _ := newProxy(t, mockapi.New(mockapi.Options{}).Router())

	resp, err := http.Get(px.URL + "/api/quiz/available")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, resp.StatusCode)
	}
	var body struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Data) != 1 {
		t.Fatalf("body: success=%v quizzes=%d", body.Success, len(body.Data))
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin without Origin header: got=%q", got)
	}
}

func TestProxyRewritesHostAndKeepsPath(t *testing.T) {
	var gotHost, gotPath, gotQuery, gotAuth string
	px, be := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost, gotPath, gotQuery, gotAuth = r.Host, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))

	req, _ := http.NewRequest(http.MethodPost, px.URL+"/api/chatbot/message?x=1", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()

	beURL, _ := url.Parse(be.URL)
	if gotHost != beURL.Host {
		t.Fatalf("host: want=%q got=%q", beURL.Host, gotHost)
	}
	if gotPath != "/api/chatbot/message" || gotQuery != "x=1" || gotAuth != "Bearer abc" {
		t.Fatalf("forwarded: path=%q query=%q auth=%q", gotPath, gotQuery, gotAuth)
	}
}

func TestProxyEmitsSingleAllowOrigin(t *testing.T) {
	px, _ := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
	}))

	req, _ := http.NewRequest(http.MethodGet, px.URL+"/api/quiz/available", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Values("Access-Control-Allow-Origin"); len(got) != 1 || got[0] != "*" {
		t.Fatalf("allow-origin: want exactly one %q got=%q", "*", got)
	}
	if got := resp.Header.Values("Access-Control-Allow-Methods"); len(got) != 0 {
		t.Fatalf("backend allow-methods leaked on simple request: %q", got)
	}
}

func TestPreflightNeverForwarded(t *testing.T) {
	calls := 0
	px, _ := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	req, _ := http.NewRequest(http.MethodOptions, px.URL+"/api/quiz/submit-with-ai", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || calls != 0 {
		t.Fatalf("status=%d backend calls=%d", resp.StatusCode, calls)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Fatalf("allow-methods: %q", got)
	}
}

func TestTestAndHealthEndpoints(t *testing.T) {
	px, _ := newProxy(t, http.NotFoundHandler())

	resp, err := http.Get(px.URL + "/test")
	if err != nil {
		t.Fatalf("GET /test: %v", err)
	}
	var test map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&test)
	resp.Body.Close()
	if test["message"] != "Proxy server is working!" || test["timestamp"] == "" {
		t.Fatalf("/test body: %v", test)
	}

	resp, err = http.Get(px.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(raw)) != `{"status":"ok"}` {
		t.Fatalf("/health body: %s", raw)
	}
}

func TestBackendDownReturnsBadGateway(t *testing.T) {
	h, err := handlers.NewProxyHandler("http://127.0.0.1:1", nil)
	if err != nil {
		t.Fatalf("NewProxyHandler: %v", err)
	}
	rec := httptest.NewRecorder()
	NewRouter(h, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/test", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: want=%d got=%d", http.StatusBadGateway, rec.Code)
	}
}

func TestNewProxyHandlerRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://nope"} {
		if _, err := handlers.NewProxyHandler(raw, nil); err == nil {
			t.Fatalf("NewProxyHandler(%q): want error", raw)
		}
	}
}

func TestWebSocketUpgradePassesThrough(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	px, _ := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(kind, append([]byte("echo:"), msg...)); err != nil {
				return
			}
		}
	}))

	wsURL := "ws" + strings.TrimPrefix(px.URL, "http") + "/api/ws/updates"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status: want=%d got=%d", http.StatusSwitchingProtocols, resp.StatusCode)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(msg) != "echo:ping" {
		t.Fatalf("message: want=%q got=%q", "echo:ping", msg)
	}
}
