package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
)

// SameSiteLax appends SameSite=Lax to every jwt Set-Cookie header that lacks a
// SameSite attribute, right before the headers are flushed.
func SameSiteLax(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&sameSiteWriter{ResponseWriter: w}, r)
	})
}

type sameSiteWriter struct {
	http.ResponseWriter
	rewritten bool
}

func (w *sameSiteWriter) rewrite() {
	if w.rewritten {
		return
	}
	w.rewritten = true
	values := w.Header().Values("Set-Cookie")
	if len(values) == 0 {
		return
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.HasPrefix(v, TokenCookie+"=") && !strings.Contains(strings.ToLower(v), "samesite") {
			v += "; SameSite=Lax"
		}
		out = append(out, v)
	}
	w.Header()["Set-Cookie"] = out
}

func (w *sameSiteWriter) WriteHeader(status int) {
	w.rewrite()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sameSiteWriter) Write(b []byte) (int, error) {
	w.rewrite()
	return w.ResponseWriter.Write(b)
}

func (w *sameSiteWriter) Flush() {
	w.rewrite()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack keeps websocket upgrades working behind this middleware.
func (w *sameSiteWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *sameSiteWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
