package lead

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/auth"
)

// Handler exposes the lead engine over HTTP.
type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var in CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	l, err := h.Service.Create(req, &in)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(l)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	list, err := h.Service.List(req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return
	}

	l, err := h.Service.Get(req, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(l)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return
	}

	var in UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	l, err := h.Service.Update(req, uint(id), &in)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(l)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return
	}

	if err := h.Service.Delete(req, uint(id)); err != nil {
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return
	}

	var in ConvertLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	result, err := h.Service.Convert(req, uint(id), &in)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return
	}

	entries, err := h.Service.Timeline(req, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	stats, err := h.Service.StatsFor(req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
