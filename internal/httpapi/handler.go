// Package httpapi serves stored invoices as JSON.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/invoicer/internal/query"
	"github.com/roach88/invoicer/internal/render"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Lister,Pinger

// Lister is the read side the handler serves.
type Lister interface {
	AllInvoicesWithDetails(ctx context.Context) ([]query.InvoiceView, error)
	InvoiceWithDetails(ctx context.Context, id int64) (query.InvoiceView, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles invoice endpoints.
type Handler struct {
	lister Lister
	pinger Pinger
	logger *slog.Logger
}

// New creates a new invoice Handler.
func New(lister Lister, pinger Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{lister: lister, pinger: pinger, logger: logger}
}

// Register registers the invoice routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/invoices", h.handleListInvoices)
	r.Get("/invoices/{id}", h.handleGetInvoice)
	r.Get("/healthz", h.handleHealth)
}

// handleListInvoices returns every invoice in the success envelope.
func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views, err := h.lister.AllInvoicesWithDetails(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load invoices", "error", err.Error())
		h.writeJSON(w, r, http.StatusInternalServerError, render.Error("failed to load invoices"))
		return
	}

	h.writeJSON(w, r, http.StatusOK, render.Success(views))
}

// handleGetInvoice returns one invoice in the success envelope.
func (h *Handler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.writeJSON(w, r, http.StatusBadRequest, render.Error("invalid invoice id"))
		return
	}

	view, err := h.lister.InvoiceWithDetails(ctx, id)
	if errors.Is(err, query.ErrInvoiceNotFound) {
		h.writeJSON(w, r, http.StatusNotFound, render.Error("invoice not found"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load invoice", "invoice_id", id, "error", err.Error())
		h.writeJSON(w, r, http.StatusInternalServerError, render.Error("failed to load invoice"))
		return
	}

	h.writeJSON(w, r, http.StatusOK, render.Success([]query.InvoiceView{view}))
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", "error", err.Error())
		h.writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	h.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := render.Write(w, v); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response", "error", err.Error())
	}
}
