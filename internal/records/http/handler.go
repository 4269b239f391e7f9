package recordhttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bizzportal/bizzportal/internal/platform/httpx"
	"github.com/bizzportal/bizzportal/internal/records"
)

// Handler exposes JSON CRUD endpoints for the four record types.
type Handler struct {
	logger  *slog.Logger
	service *records.Service
}

// NewHandler builds a records handler.
func NewHandler(logger *slog.Logger, service *records.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

type envelope struct {
	Data any `json:"data"`
}

// MountRoutes registers record endpoints. Callers mount it under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	s := h.service

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", list(h, s.ListSuppliers))
		r.Post("/", create(h, s.CreateSupplier))
		r.Get("/{id}", get(h, s.GetSupplier))
		r.Put("/{id}", update(h, s.UpdateSupplier))
		r.Delete("/{id}", remove(h, s.DeleteSupplier))
	})
	r.Route("/budgets", func(r chi.Router) {
		r.Get("/", list(h, s.ListBudgets))
		r.Post("/", create(h, s.CreateBudget))
		r.Get("/{id}", get(h, s.GetBudget))
		r.Put("/{id}", update(h, s.UpdateBudget))
		r.Delete("/{id}", remove(h, s.DeleteBudget))
	})
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", list(h, s.ListInvoices))
		r.Post("/", create(h, s.CreateInvoice))
		r.Get("/{id}", get(h, s.GetInvoice))
		r.Put("/{id}", update(h, s.UpdateInvoice))
		r.Delete("/{id}", remove(h, s.DeleteInvoice))
	})
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", list(h, s.ListDocuments))
		r.Post("/", create(h, s.CreateDocument))
		r.Get("/{id}", get(h, s.GetDocument))
		r.Put("/{id}", update(h, s.UpdateDocument))
		r.Delete("/{id}", remove(h, s.DeleteDocument))
	})
}

func list[T any](h *Handler, fn func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fn(r.Context())
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, envelope{Data: items})
	}
}

func get[T any](h *Handler, fn func(context.Context, int64) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		item, err := fn(r.Context(), id)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, envelope{Data: item})
	}
}

func create[In, T any](h *Handler, fn func(context.Context, In) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := httpx.DecodeJSON(r, &in); err != nil {
			h.respondError(w, r, fmt.Errorf("invalid request body: %w", httpx.ErrValidation))
			return
		}
		item, err := fn(r.Context(), in)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, envelope{Data: item})
	}
}

func update[In, T any](h *Handler, fn func(context.Context, int64, In) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		var in In
		if err := httpx.DecodeJSON(r, &in); err != nil {
			h.respondError(w, r, fmt.Errorf("invalid request body: %w", httpx.ErrValidation))
			return
		}
		item, err := fn(r.Context(), id, in)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, envelope{Data: item})
	}
}

func remove(h *Handler, fn func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if err := fn(r.Context(), id); err != nil {
			h.respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %w", httpx.ErrValidation)
	}
	return id, nil
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !isClientError(err) {
		h.logger.Error("records request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func isClientError(err error) bool {
	return errors.Is(err, httpx.ErrNotFound) ||
		errors.Is(err, httpx.ErrValidation) ||
		errors.Is(err, httpx.ErrDuplicate)
}
