package server

import (
	"context"
	"embed"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"focus-cli/errs"
	"focus-cli/logging"
)

//go:embed web/*
var webFS embed.FS

var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "focus_responder_requests_total",
		Help: "Requests handled by the local responder, by blocklist match.",
	}, []string{"blocked"})
)

// Responder serves the static blocked page on a local port while a session
// is active. Blocked domains resolve to the redirect address, so a browser
// pointed at one of them lands here. Implements core.Responder.
type Responder struct {
	Port    int
	Domains []string // expanded blocklist, used to annotate request logs

	srv      *http.Server
	ln       net.Listener
	logEvery *rate.Limiter
}

// New returns an unstarted responder for the given port.
func New(port int, domains []string) *Responder {
	return &Responder{
		Port:    port,
		Domains: domains,
		// A redirected browser tab can hammer the port with retries and
		// asset requests; cap the log noise.
		logEvery: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Start binds the listener and begins serving in the background. Bind
// failures (port taken, privileged port without the capability) are returned
// to the caller, which degrades to running without a responder.
func (r *Responder) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", r.handle)

	addr := "127.0.0.1:" + strconv.Itoa(r.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errs.ErrListenerBind.WithMessagef("bind %s: %v", addr, err)
	}
	r.ln = ln
	r.srv = &http.Server{Handler: mux}

	go func() {
		if err := r.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.ErrorErr("responder stopped unexpectedly", err)
		}
	}()

	logging.Info("local responder listening", map[string]any{"addr": ln.Addr().String()})
	return nil
}

// Addr returns the bound address, or "" before Start.
func (r *Responder) Addr() string {
	if r.ln == nil {
		return ""
	}
	return r.ln.Addr().String()
}

// Stop shuts the responder down, waiting for in-flight requests up to the
// context deadline. The listener is closed immediately, so the port is free
// for rebinding by the time Stop returns.
func (r *Responder) Stop(ctx context.Context) error {
	if r.srv == nil {
		return nil
	}
	err := r.srv.Shutdown(ctx)
	if err != nil {
		r.srv.Close()
	}
	r.srv = nil
	r.ln = nil
	return err
}

func (r *Responder) handle(w http.ResponseWriter, req *http.Request) {
	host := req.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	blocked := MatchesBlocked(host, r.Domains)
	requestsTotal.WithLabelValues(strconv.FormatBool(blocked)).Inc()
	if r.logEvery.Allow() {
		logging.Info("redirected request", map[string]any{
			"host":    host,
			"path":    req.URL.Path,
			"blocked": blocked,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page, err := webFS.ReadFile("web/blocked.html")
	if err != nil {
		fmt.Fprintln(w, "blocked by focus-cli")
		return
	}
	_, _ = w.Write(page)
}

// MatchesBlocked reports whether host is one of the blocked domains, exactly
// or as a subdomain (suffix match on a label boundary). Comparison is
// case-insensitive and ignores a trailing dot on the host.
func MatchesBlocked(host string, domains []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range domains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
