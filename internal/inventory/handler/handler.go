package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
)

type stockHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc inventory.UseCase, log logger.ZapLogger) *stockHandler {
	return &stockHandler{uc: uc, logger: log}
}

func (h *stockHandler) MapRoutes(r chi.Router) {
	r.Route("/variants/{id}/stock", func(r chi.Router) {
		r.Post("/adjustments", h.adjust)
		r.Get("/availability", h.availability)
		r.Get("/movements", h.movements)
	})
}

func (h *stockHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var input dto.AdjustStockInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.RespondError(w, apperror.NewValidation("invalid_body", "request body is not valid JSON"))
		return
	}
	input.VariantID = chi.URLParam(r, "id")

	result, err := h.uc.AdjustStock(r.Context(), &input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, result)
}

func (h *stockHandler) availability(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		httpx.RespondError(w, apperror.NewValidation("invalid_probe_quantity", "quantity query parameter must be an integer"))
		return
	}

	result, err := h.uc.CheckAvailability(r.Context(), chi.URLParam(r, "id"), quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, result)
}

func (h *stockHandler) movements(w http.ResponseWriter, r *http.Request) {
	filters := &dto.MovementFilters{
		VariantID: chi.URLParam(r, "id"),
	}
	filters.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filters.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if t := r.URL.Query().Get("type"); t != "" {
		filters.MovementType = &t
	}

	movements, total, err := h.uc.ListMovements(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"total":     total,
		"movements": movements,
	})
}
