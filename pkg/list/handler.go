package list

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/g3tech/donation-engine/pkg/user"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: newValidator()}
}

// GetList godoc
// @Summary Get the allocation list of the current user
// @Description Returns the stored list with freshly computed donation values. A default list is created on first access.
// @Tags List
// @Produce json
// @Success 200 {object} ListDTO
// @Failure 403 {string} string "User not found"
// @Router /api/list [get]
// @Security XUserId
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting list")
	w.Header().Set("Content-Type", "application/json")
	list, err := h.service.GetList(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListToDTO(list))
}

// UpdateList godoc
// @Summary Replace the budget, categories and entries of the current user
// @Tags List
// @Accept json
// @Produce json
// @Param list body ListDTO true "List"
// @Success 200 {object} ListDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/list [put]
// @Security XUserId
func (h *Handler) UpdateList(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating list")
	w.Header().Set("Content-Type", "application/json")
	listDTO, ok := h.decode(w, r)
	if !ok {
		return
	}

	list, err := h.service.UpdateList(r.Context(), DTOToList(listDTO))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListToDTO(list))
}

// Preview godoc
// @Summary Compute the allocation of a list without storing it
// @Tags List
// @Accept json
// @Produce json
// @Param list body ListDTO true "List"
// @Success 200 {object} ListDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/list/preview [post]
// @Security XUserId
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	log.Debug("Previewing list")
	w.Header().Set("Content-Type", "application/json")
	listDTO, ok := h.decode(w, r)
	if !ok {
		return
	}

	list, err := h.service.Preview(r.Context(), DTOToList(listDTO))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListToDTO(list))
}

// Validate godoc
// @Summary Check whether the stored list reconciles
// @Tags List
// @Produce json
// @Success 200 {object} object{valid=bool}
// @Router /api/list/validation [get]
// @Security XUserId
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	valid, err := h.service.Validate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Valid bool `json:"valid"`
	}{valid})
}

// Checkout godoc
// @Summary Get the donation plan of the stored list
// @Description Fails with 409 when the allocation does not reconcile.
// @Tags List
// @Produce json
// @Success 200 {object} CheckoutDTO
// @Failure 409 {string} string "Allocation is not consistent"
// @Router /api/list/checkout [post]
// @Security XUserId
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	log.Debug("Checking out list")
	w.Header().Set("Content-Type", "application/json")
	checkout, err := h.service.Checkout(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutToDTO(checkout))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ListDTO, bool) {
	var listDTO ListDTO
	if err := json.NewDecoder(r.Body).Decode(&listDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return ListDTO{}, false
	}
	if err := h.validate.Struct(listDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return ListDTO{}, false
	}
	return listDTO, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidAllocation):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrListNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
