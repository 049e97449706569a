package list

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/g3tech/donation-engine/internal/event_bus"
	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/g3tech/donation-engine/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A middleware that sets the user in the context
func withUser(uid string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := user.WithUser(r.Context(), user.User{Uid: uid})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setupHandlerTest(t *testing.T, uid string) http.Handler {
	t.Cleanup(repoStub.Cleanup)
	service := NewService(repoStub, allocation.NewEngine(), event_bus.NewEventBus(), testDefaults)
	handler := NewHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/list", handler.GetList).Methods(http.MethodGet)
	r.HandleFunc("/api/list", handler.UpdateList).Methods(http.MethodPut)
	r.HandleFunc("/api/list/preview", handler.Preview).Methods(http.MethodPost)
	r.HandleFunc("/api/list/validation", handler.Validate).Methods(http.MethodGet)
	r.HandleFunc("/api/list/checkout", handler.Checkout).Methods(http.MethodPost)
	if uid == "" {
		return r
	}
	return withUser(uid, r)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) ListDTO {
	var dto ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	return dto
}

func TestHandler_GetList(t *testing.T) {
	t.Run("should return the default list", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")

		// when
		w := do(t, h, http.MethodGet, "/api/list", nil)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		dto := decodeList(t, w)
		assert.Equal(t, "10000", dto.Budget.TotalValue.String())
		assert.Equal(t, "1000", dto.Budget.DonationValue.String())
		assert.Empty(t, dto.Categories)
		assert.True(t, dto.Valid)
	})

	t.Run("should return 403 without a user", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "")

		// when
		w := do(t, h, http.MethodGet, "/api/list", nil)

		// then
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandler_UpdateList(t *testing.T) {
	t.Run("should store the list and return the allocation", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")
		body := []byte(`{
			"budget": {"totalValue": "20000", "donationPercent": "0.05"},
			"categories": [
				{"name": "Education", "enabled": true, "entries": [{"ein": "13-1623829", "enabled": true}]},
				{"name": "Environment", "enabled": true, "valueOverride": "400",
					"entries": [{"ein": "53-0196605", "enabled": true}]}
			]
		}`)
		req := httptest.NewRequest(http.MethodPut, "/api/list", bytes.NewReader(body))
		w := httptest.NewRecorder()

		// when
		h.ServeHTTP(w, req)

		// then
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		dto := decodeList(t, w)
		assert.NotZero(t, dto.Id)
		assert.Equal(t, "1000", dto.Budget.DonationValue.String())
		require.Len(t, dto.Categories, 2)
		assert.Equal(t, "600", dto.Categories[0].DonationValue.String())
		assert.Equal(t, "0.6", dto.Categories[0].DonationPercent.String())
		assert.Equal(t, "400", dto.Categories[1].DonationValue.String())
		assert.Equal(t, "1", dto.Categories[0].Multiplier.String())
		assert.True(t, dto.Categories[0].Included)
		assert.True(t, dto.Valid)

		stored := decodeList(t, do(t, h, http.MethodGet, "/api/list", nil))
		assert.Equal(t, dto, stored)
	})

	t.Run("should reject malformed json", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")
		req := httptest.NewRequest(http.MethodPut, "/api/list", bytes.NewReader([]byte(`{"budget":`)))
		w := httptest.NewRecorder()

		// when
		h.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject a donation percent above one", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")
		req := httptest.NewRequest(http.MethodPut, "/api/list",
			bytes.NewReader([]byte(`{"budget": {"totalValue": "100", "donationPercent": "1.5"}}`)))
		w := httptest.NewRecorder()

		// when
		h.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "DonationPercent")
	})

	t.Run("should reject an entry without ein", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")
		req := httptest.NewRequest(http.MethodPut, "/api/list", bytes.NewReader([]byte(`{
			"budget": {"totalValue": "100", "donationPercent": "0.1"},
			"categories": [{"name": "Culture", "enabled": true, "entries": [{"enabled": true}]}]
		}`)))
		w := httptest.NewRecorder()

		// when
		h.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Ein")
	})
}

func TestHandler_Preview(t *testing.T) {
	// given
	h := setupHandlerTest(t, "donor-1")
	body := []byte(`{
		"budget": {"totalValue": "5000", "donationPercent": "0.1", "valueOverride": "300"},
		"categories": [
			{"name": "Culture", "enabled": true, "entries": [{"ein": "13-1623829", "enabled": true}]},
			{"name": "Justice", "enabled": true, "multiplier": "2", "entries": [{"ein": "53-0196605", "enabled": true}]}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/list/preview", bytes.NewReader(body))
	w := httptest.NewRecorder()

	// when
	h.ServeHTTP(w, req)

	// then
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dto := decodeList(t, w)
	assert.Equal(t, "300", dto.Budget.DonationValue.String())
	assert.Equal(t, "99", dto.Categories[0].DonationValue.String())
	assert.Equal(t, "201", dto.Categories[1].DonationValue.String())

	stored := decodeList(t, do(t, h, http.MethodGet, "/api/list", nil))
	assert.Empty(t, stored.Categories)
}

func TestHandler_Validate(t *testing.T) {
	// given
	h := setupHandlerTest(t, "donor-1")

	// when
	w := do(t, h, http.MethodGet, "/api/list/validation", nil)

	// then
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid": true}`, w.Body.String())
}

func TestHandler_Checkout(t *testing.T) {
	t.Run("should return the donation plan", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")
		list := ListDTO{
			Budget: BudgetDTO{TotalValue: testDefaults.TotalValue, DonationPercent: testDefaults.DonationPercent},
			Categories: []CategoryDTO{
				{Name: "Education", Enabled: true, Entries: []EntryDTO{{Ein: "13-1623829", Enabled: true}}},
			},
		}
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/list", list).Code)

		// when
		w := do(t, h, http.MethodPost, "/api/list/checkout", nil)

		// then
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var dto CheckoutDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
		assert.Equal(t, "1000.00", dto.Total)
		assert.Equal(t, []DonationDTO{{Category: "Education", Ein: "13-1623829", Amount: "1000.00"}}, dto.Donations)
	})

	t.Run("should return 409 when the list does not reconcile", func(t *testing.T) {
		// given
		h := setupHandlerTest(t, "donor-1")
		categories := make([]CategoryDTO, 0, 3)
		for i, name := range []string{"Culture", "Education", "Justice"} {
			categories = append(categories, CategoryDTO{Name: name, Enabled: true, Entries: []EntryDTO{{Ein: einOf(i), Enabled: true}}})
		}
		list := ListDTO{
			Budget:     BudgetDTO{TotalValue: testDefaults.TotalValue, DonationPercent: testDefaults.DonationPercent},
			Categories: categories,
		}
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/list", list).Code)

		// when
		w := do(t, h, http.MethodPost, "/api/list/checkout", nil)

		// then
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), ErrInvalidAllocation.Error())
	})
}
