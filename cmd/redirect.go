package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"county-map/internal/logger"
)

// redirectToHTTPS：HTTP 请求 301 到 HTTPS 服务端口
func redirectToHTTPS(l *slog.Logger, tlsAddr string) {
	redirAddr := os.Getenv("TLS_REDIRECT_ADDR")
	if redirAddr == "" {
		redirAddr = ":80"
	}
	httpsPort := strings.TrimPrefix(tlsAddr, ":")
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if i := strings.LastIndex(host, ":"); i != -1 {
			host = host[:i]
		}
		if httpsPort != "" && httpsPort != "443" {
			host += ":" + httpsPort
		}
		target := "https://" + host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+tlsAddr)
	if err := http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(h)); err != nil {
		l.Error("http_redirect_error", "err", err)
	}
}
