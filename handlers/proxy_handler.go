package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eduguide/logger"
)

type ProxyHandler struct {
	target *url.URL
	proxy  *httputil.ReverseProxy
	log    *logger.Logger
}

// NewProxyHandler forwards requests to backendURL, rewriting Host to the
// backend's. Upgrade requests are passed through by the reverse proxy.
func NewProxyHandler(backendURL string, log *logger.Logger) (*ProxyHandler, error) {
	target, err := url.Parse(strings.TrimSpace(backendURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", backendURL)
	}
	if log == nil {
		log = logger.Nop()
	}

	h := &ProxyHandler{target: target, log: log.With("component", "proxy", "target", target.String())}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ModifyResponse: stripCORS,
		ErrorHandler:   h.proxyError,
	}
	return h, nil
}

func (h *ProxyHandler) Target() *url.URL {
	u := *h.target
	return &u
}

// Forward proxies /api/* to the backend unchanged.
func (h *ProxyHandler) Forward(c *gin.Context) {
	h.proxy.ServeHTTP(c.Writer, c.Request)
}

// stripCORS drops the backend's CORS headers; the proxy's own middleware
// has already set them and browsers reject duplicated values.
func stripCORS(resp *http.Response) error {
	for _, key := range []string{
		"Access-Control-Allow-Origin",
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Allow-Credentials",
		"Access-Control-Expose-Headers",
		"Access-Control-Max-Age",
	} {
		resp.Header.Del(key)
	}
	return nil
}

func (h *ProxyHandler) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("backend request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = io.WriteString(w, `{"success":false,"message":"Backend unavailable"}`)
}

func (h *ProxyHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Proxy server is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *ProxyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
