// Package server exposes a portfolio.Book over a JSON HTTP API.
//
// Every request must carry the PIN in the X-PIN header. When no PIN was ever
// set, the first valid one received becomes the PIN.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/portfoy/portfolio"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// PINHeader carries the PIN of every request.
const PINHeader = "X-PIN"

// Server routes requests to a Book.
type Server struct {
	book    *portfolio.Book
	rates   portfolio.RateSource
	log     logrus.FieldLogger
	limiter *rate.Limiter
	router  chi.Router

	readTimeout, writeTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithRateSource enables POST /rates/refresh.
func WithRateSource(src portfolio.RateSource) Option { return func(s *Server) { s.rates = src } }

func WithLogger(log logrus.FieldLogger) Option { return func(s *Server) { s.log = log } }

// WithLimiter sets the rate of accepted requests, all clients together.
func WithLimiter(l *rate.Limiter) Option { return func(s *Server) { s.limiter = l } }

// WithTimeouts sets the read and write timeouts of ListenAndServe.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) { s.readTimeout, s.writeTimeout = read, write }
}

// New returns a Server on book. By default it accepts 10 requests per second
// with bursts of 30.
func New(book *portfolio.Book, opts ...Option) *Server {
	s := &Server{
		book:         book,
		log:          logrus.StandardLogger(),
		limiter:      rate.NewLimiter(rate.Every(100*time.Millisecond), 30),
		readTimeout:  10 * time.Second,
		writeTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.limit)
	r.Use(s.requirePIN)

	r.Get("/snapshot", s.getSnapshot)
	r.Get("/holdings", s.getHoldings)
	r.Get("/history", s.getHistory)
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.getTransactions)
		r.Post("/", s.postTransaction)
		r.Put("/{id}", s.putTransaction)
		r.Delete("/{id}", s.deleteTransaction)
	})
	r.Get("/rates", s.getRates)
	r.Put("/rates", s.putRates)
	r.Post("/rates/refresh", s.refreshRates)
	r.Get("/prices", s.getPrices)
	r.Put("/prices", s.putPrices)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sendJSONError(w, s.log, "no route for "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		sendJSONError(w, s.log, r.Method+" is not allowed on "+r.URL.Path, http.StatusMethodNotAllowed)
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.log.Info("server stopped")
		return nil
	}
}
