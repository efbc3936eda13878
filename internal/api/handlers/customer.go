package handlers

import (
	"errors"
	"net/http"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/Harshitk-cp/patron/internal/service"
	"github.com/go-chi/chi/v5"
)

const msgCustomerNotFound = "Customer not found"

type CustomerHandler struct {
	svc *service.CustomerService
}

func NewCustomerHandler(svc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeCustomerPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := payload.createInput()

	customer, err := h.svc.Create(r.Context(), in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	customer, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, msgCustomerNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// List handles GET /customers with optional ?name= and ?email= filters. A
// parameter counts as given when its key is present, even if empty.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter domain.CustomerFilter
	if q.Has("name") {
		name := q.Get("name")
		filter.Name = &name
	}
	if q.Has("email") {
		email := q.Get("email")
		filter.Email = &email
	}

	customers, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeCustomerPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := payload.updateInput()

	customer, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			writeError(w, http.StatusNotFound, msgCustomerNotFound)
		case errors.As(err, &verr):
			writeValidationError(w, verr)
		default:
			writeError(w, http.StatusInternalServerError, "failed to update customer")
		}
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, msgCustomerNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
}
