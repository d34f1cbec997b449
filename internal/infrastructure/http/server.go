package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
)

type Server struct {
	svc  *application.PriceService
	ping func(ctx context.Context) error
}

func NewServer(svc *application.PriceService) *Server { return &Server{svc: svc} }

// SetReadyCheck installs the probe behind /readyz, usually the verdict
// store's Ping.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

func (s *Server) GetPrice(w http.ResponseWriter, r *http.Request) {
	params, err := bindGetPriceParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	force := params.Force != nil && *params.Force
	v, err := s.svc.ResolvePrice(r.Context(), params.Q, application.ResolveOptions{Force: force})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	include := params.IncludeDetails != nil && *params.IncludeDetails
	writeJSON(w, http.StatusOK, toPricePayload(v, include))
}

func (s *Server) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	params, err := bindHistoryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	entries, err := s.svc.PriceHistory(r.Context(), params.Q, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := historyPayload{Query: params.Q, Entries: make([]historyEntryPayload, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toHistoryEntryPayload(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type sourcePayload struct {
	Source     string    `json:"source"`
	Price      *float64  `json:"price,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	Error      string    `json:"error,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

type pricePayload struct {
	Query           string          `json:"query"`
	Status          string          `json:"status"`
	Price           *float64        `json:"price"`
	Currency        string          `json:"currency"`
	SourcesCount    int             `json:"sources_count"`
	AgreeingSources int             `json:"agreeing_sources"`
	UpdatedAt       time.Time       `json:"updated_at"`
	IsFresh         bool            `json:"is_fresh"`
	Sources         []sourcePayload `json:"sources,omitempty"`
}

type historyEntryPayload struct {
	Status          string    `json:"status"`
	Price           *float64  `json:"price"`
	Currency        string    `json:"currency"`
	SourcesCount    int       `json:"sources_count"`
	AgreeingSources int       `json:"agreeing_sources"`
	CreatedAt       time.Time `json:"created_at"`
}

type historyPayload struct {
	Query   string                `json:"query"`
	Entries []historyEntryPayload `json:"entries"`
}

func toPricePayload(v domain.Verdict, includeDetails bool) pricePayload {
	p := pricePayload{
		Query:           v.QueryKey,
		Status:          string(v.Status),
		Price:           decimalPtr(v.Price),
		Currency:        v.Currency,
		SourcesCount:    v.SourcesCount,
		AgreeingSources: v.AgreeingSources,
		UpdatedAt:       v.UpdatedAt,
		IsFresh:         v.IsFresh,
	}
	if includeDetails {
		p.Sources = make([]sourcePayload, 0, len(v.Sources))
		for _, o := range v.Sources {
			p.Sources = append(p.Sources, sourcePayload{
				Source:     o.Source,
				Price:      decimalPtr(o.Price),
				Currency:   o.Currency,
				Error:      o.Error,
				ObservedAt: o.ObservedAt,
			})
		}
	}
	return p
}

func toHistoryEntryPayload(e domain.HistoryEntry) historyEntryPayload {
	return historyEntryPayload{
		Status:          string(e.Status),
		Price:           decimalPtr(e.Price),
		Currency:        e.Currency,
		SourcesCount:    e.SourcesCount,
		AgreeingSources: e.AgreeingSources,
		CreatedAt:       e.CreatedAt,
	}
}

func decimalPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrHistoryDisabled):
		writeError(w, http.StatusNotFound, "history not available on this backend")
	case errors.Is(err, application.ErrEngineUnavailable), errors.Is(err, application.ErrNoSources):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Code: code, Message: msg})
}
