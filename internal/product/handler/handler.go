package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type productHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *productHandler {
	return &productHandler{uc: uc, logger: log}
}

func (h *productHandler) MapRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Patch("/{id}/status", h.changeStatus)
	})
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.RespondError(w, apperror.NewValidation("invalid_body", "request body is not valid JSON"))
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		h.logger.Debug("create product rejected", zap.String("sku", input.SKU), zap.Error(err))
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, dto.NewCreateProductResult(p))
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	var input dto.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.RespondError(w, apperror.NewValidation("invalid_body", "request body is not valid JSON"))
		return
	}
	input.ID = chi.URLParam(r, "id")

	p, err := h.uc.UpdateProduct(r.Context(), &input)
	if err != nil {
		h.logger.Debug("update product rejected", zap.String("product_id", input.ID), zap.Error(err))
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, dto.NewCreateProductResult(p))
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *productHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.RespondError(w, apperror.NewValidation("invalid_body", "request body is not valid JSON"))
		return
	}

	p, err := h.uc.ChangeStatus(r.Context(), chi.URLParam(r, "id"), model.ProductStatus(body.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, dto.NewCreateProductResult(p))
}
