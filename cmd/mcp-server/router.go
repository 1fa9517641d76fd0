package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/tool"
	"go.uber.org/zap"
)

// newRouter wires the tool endpoints. Every request gets its own Session.
func newRouter(cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	settings := cfg.Settings()
	maxBody := cfg.Server.MaxBodyBytes

	r.Post("/tool", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req tool.Request
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, tool.Response{Error: err.Error(), Kind: "invalid"})
			return
		}
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, tool.Response{Error: "invalid JSON: trailing data", Kind: "invalid"})
			return
		}

		reqLog := logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
		s := gocas.NewSession(gocas.WithLogger(reqLog), gocas.WithConfig(settings))
		resp := tool.Handle(s, req)
		if resp.Error != "" {
			reqLog.Debug("tool failed", zap.String("tool", req.Tool), zap.String("kind", resp.Kind), zap.String("error", resp.Error))
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(tool.Spec())
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
