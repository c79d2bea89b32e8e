package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/portfoy/portfolio"
	"github.com/sirupsen/logrus"
)

// sendJSONError writes {"error": message} with the status code.
func sendJSONError(w http.ResponseWriter, log logrus.FieldLogger, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	log.WithFields(logrus.Fields{"status": statusCode, "message": message}).Warn("sending error to client")
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			sendJSONError(w, s.log, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requirePIN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pin := r.Header.Get(PINHeader)
		if pin == "" {
			sendJSONError(w, s.log, "missing "+PINHeader+" header", http.StatusUnauthorized)
			return
		}
		err := s.book.Unlock(r.Context(), pin)
		switch {
		case errors.Is(err, portfolio.ErrInvalidPIN), errors.Is(err, portfolio.ErrWrongPIN):
			sendJSONError(w, s.log, err.Error(), http.StatusUnauthorized)
			return
		case err != nil:
			sendJSONError(w, s.log, err.Error(), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"request":  middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
