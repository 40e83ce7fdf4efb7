package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rubconv-service/internal/application"
	"rubconv-service/internal/domain"
	"rubconv-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

type Server struct {
	svc  *application.ConverterService
	ping func(ctx context.Context) error
}

func NewServer(svc *application.ConverterService) *Server { return &Server{svc: svc, ping: svc.Ping} }

// SetReadyCheck replaces the readiness check.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConvertParams are the query parameters of GET /convert.
type ConvertParams struct {
	Amount   string   `json:"amount"`
	Currency *string  `json:"currency,omitempty"`
	Source   *string  `json:"source,omitempty"`
	Spread   *float64 `json:"spread,omitempty"`
	Custom   *string  `json:"custom,omitempty"`
}

// QuoteHistoryParams are the query parameters of GET /quotes/history.
type QuoteHistoryParams struct {
	Currency string `json:"currency"`
	Limit    *int   `json:"limit,omitempty"`
}

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.View(r.Context()))
}

func (s *Server) PatchPreferences(w http.ResponseWriter, r *http.Request) {
	var patch application.PreferencesPatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	v, err := s.svc.UpdatePreferences(r.Context(), patch)
	if err != nil {
		if errors.Is(err, application.ErrBadRequest) {
			badRequest(w, err.Error())
			return
		}
		// the change is applied in memory even when persisting it failed
		logx.WithFields(r.Context()).Warn("preferences.persist_failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, v)
}

// Refresh always answers with the view; provider failures show up in its error field.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Refresh(r.Context()); err != nil {
		logx.WithFields(r.Context()).Info("refresh.partial", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, s.svc.View(r.Context()))
}

func (s *Server) FetchMarket(w http.ResponseWriter, r *http.Request, currency string) {
	v, err := s.svc.FetchMarket(r.Context(), currency)
	if errors.Is(err, application.ErrBadRequest) {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) FetchReference(w http.ResponseWriter, r *http.Request) {
	v, _ := s.svc.FetchReference(r.Context())
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) FetchDepth(w http.ResponseWriter, r *http.Request) {
	v, _ := s.svc.FetchDepth(r.Context())
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request, params ConvertParams) {
	c, err := s.svc.Convert(r.Context(), application.ConvertInput{
		Amount:   params.Amount,
		Currency: params.Currency,
		Source:   params.Source,
		Spread:   params.Spread,
		Custom:   params.Custom,
	})
	if err != nil {
		if errors.Is(err, application.ErrBadRequest) {
			badRequest(w, err.Error())
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.History(r.Context()))
}

func (s *Server) SaveHistory(w http.ResponseWriter, r *http.Request) {
	e, saved, err := s.svc.Save(r.Context())
	if err != nil {
		logx.WithFields(r.Context()).Warn("history.persist_failed", zap.Error(err))
	}
	if !saved {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) QuoteHistory(w http.ResponseWriter, r *http.Request, params QuoteHistoryParams) {
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	rows, err := s.svc.QuoteHistory(r.Context(), params.Currency, limit)
	if err != nil {
		if errors.Is(err, application.ErrBadRequest) {
			badRequest(w, err.Error())
			return
		}
		logx.WithFields(r.Context()).Error("quotes.list_failed", zap.Error(err))
		internalError(w)
		return
	}
	if rows == nil {
		rows = []domain.QuoteHistory{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handlers adapting chi routes to the typed methods above

func (s *Server) fetchMarketHandler(w http.ResponseWriter, r *http.Request) {
	s.FetchMarket(w, r, chi.URLParam(r, "currency"))
}

func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	var params ConvertParams
	q := r.URL.Query()
	binds := []struct {
		name     string
		required bool
		dest     any
	}{
		{"amount", true, &params.Amount},
		{"currency", false, &params.Currency},
		{"source", false, &params.Source},
		{"spread", false, &params.Spread},
		{"custom", false, &params.Custom},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, q, b.dest); err != nil {
			badRequest(w, fmt.Sprintf("invalid query parameter %s", b.name))
			return
		}
	}
	s.Convert(w, r, params)
}

func (s *Server) quoteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	var params QuoteHistoryParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "currency", q, &params.Currency); err != nil {
		badRequest(w, "invalid query parameter currency")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		badRequest(w, "invalid query parameter limit")
		return
	}
	s.QuoteHistory(w, r, params)
}

// writeJSON encodes before writing the header so an unencodable value
// becomes a 500 envelope instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logx.L().Error("http.encode_failed", zap.Error(err))
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorBody{Code: status, Message: http.StatusText(status)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
