package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portfoy/portfolio"
)

// validation lists the errors caused by the request content.
var validation = []error{
	portfolio.ErrInvalidNumber,
	portfolio.ErrInvalidDate,
	portfolio.ErrNonPositiveAmount,
	portfolio.ErrNegativePrice,
	portfolio.ErrEmptySymbol,
	portfolio.ErrInsufficientHoldings,
	portfolio.ErrUnknownCommand,
	portfolio.ErrUnknownAsset,
	portfolio.ErrUnknownCurrency,
	portfolio.ErrCurrencyMismatch,
	portfolio.ErrInvalidRate,
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrStale):
		return http.StatusBadGateway
	}
	for _, v := range validation {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	sendJSONError(w, s.log, err.Error(), statusOf(err))
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("could not encode response")
	}
}

// decode reads the request body into v, a 400 is sent on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		sendJSONError(w, s.log, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// text is a value typed by a user, sent as a JSON string or number.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		*t = text(s)
		return err
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = text(n)
	return nil
}

type draftRequest struct {
	Type      string `json:"type"`
	AssetType string `json:"assetType"`
	Symbol    string `json:"symbol"`
	Amount    text   `json:"amount"`
	Price     text   `json:"price"`
	Currency  string `json:"currency"`
	Date      string `json:"date"`
	Note      string `json:"note"`
}

func (d draftRequest) draft() portfolio.Draft {
	return portfolio.Draft{
		Command:  d.Type,
		Asset:    d.AssetType,
		Symbol:   d.Symbol,
		Amount:   string(d.Amount),
		Price:    string(d.Price),
		Currency: d.Currency,
		Date:     d.Date,
		Note:     d.Note,
	}
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	etag := `"` + portfolio.Fingerprint(s.book.Transactions(), s.book.Rates(), s.book.Prices()) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.reply(w, http.StatusOK, s.book.Snapshot())
}

func (s *Server) getHoldings(w http.ResponseWriter, r *http.Request) {
	held := []portfolio.Position{}
	for _, p := range s.book.Snapshot().Search(r.URL.Query().Get("q")) {
		if p.IsHeld() {
			held = append(held, p)
		}
	}
	s.reply(w, http.StatusOK, held)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	history := s.book.Snapshot().History()
	if history == nil {
		history = []portfolio.Position{}
	}
	s.reply(w, http.StatusOK, history)
}

func (s *Server) getTransactions(w http.ResponseWriter, r *http.Request) {
	txs := []portfolio.Transaction{}
	ledger := portfolio.NewLedger(s.book.Transactions()...)
	var filters []func(portfolio.Transaction) bool
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		filters = append(filters, portfolio.BySymbol(symbol))
	}
	for _, tx := range ledger.Transactions(filters...) {
		txs = append(txs, tx)
	}
	s.reply(w, http.StatusOK, txs)
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.book.Admit(r.Context(), req.draft())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusCreated, tx)
}

func (s *Server) putTransaction(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.book.Edit(r.Context(), chi.URLParam(r, "id"), req.draft())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, tx)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.book.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, tx)
}

func (s *Server) getRates(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, s.book.Rates())
}

// putRates sets the rates of the currencies in the body, the others keep
// their rate.
func (s *Server) putRates(w http.ResponseWriter, r *http.Request) {
	var req map[string]text
	if !s.decode(w, r, &req) {
		return
	}
	var errs []error
	rates := portfolio.RateTable{}
	for code, raw := range req {
		c, err := portfolio.ParseCurrency(code)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		v, err := portfolio.ParseRate(c, string(raw))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rates, err = rates.With(c, v); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.fail(w, err)
		return
	}
	updated, err := s.book.SetRates(r.Context(), rates)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, updated)
}

func (s *Server) refreshRates(w http.ResponseWriter, r *http.Request) {
	if s.rates == nil {
		sendJSONError(w, s.log, "no rate source configured", http.StatusNotImplemented)
		return
	}
	rates, err := s.book.RefreshRates(r.Context(), s.rates)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, rates)
}

func (s *Server) getPrices(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, s.book.Prices())
}

// putPrices sets the overrides in the body, an empty or null price clears
// the override of its symbol.
func (s *Server) putPrices(w http.ResponseWriter, r *http.Request) {
	var req map[string]text
	if !s.decode(w, r, &req) {
		return
	}
	raw := make(map[string]string, len(req))
	for symbol, price := range req {
		raw[symbol] = string(price)
	}
	prices, err := s.book.SetPrices(r.Context(), raw)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.reply(w, http.StatusOK, prices)
}
