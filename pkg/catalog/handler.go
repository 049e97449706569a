package catalog

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type DefaultCategoryDTO struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type ColorDTO struct {
	Id    int    `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListDefaultCategories godoc
// @Summary List suggested category names
// @Tags Catalog
// @Produce json
// @Success 200 {array} DefaultCategoryDTO
// @Router /api/catalog/categories [get]
func (h *Handler) ListDefaultCategories(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing default categories")
	w.Header().Set("Content-Type", "application/json")
	categories, err := h.service.DefaultCategories(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]DefaultCategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, DefaultCategoryDTO{Id: category.Id, Name: category.Name})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListColors godoc
// @Summary List the category color palette
// @Tags Catalog
// @Produce json
// @Success 200 {array} ColorDTO
// @Router /api/catalog/colors [get]
func (h *Handler) ListColors(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing colors")
	w.Header().Set("Content-Type", "application/json")
	colors, err := h.service.Colors(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ColorDTO, 0, len(colors))
	for _, color := range colors {
		dtos = append(dtos, ColorDTO{Id: color.Id, Name: color.Name, Value: color.Value})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
