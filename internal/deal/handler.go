package deal

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/auth"
)

// Handler exposes the deal engine over HTTP.
type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// Create handles POST /clients/{id}/deals.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	clientID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid client id"))
		return
	}

	var in CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	d, err := h.Service.Create(req, uint(clientID), &in)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d)
}

// List handles GET /deals?includeArchived=true|false. The two views are
// exclusive: the default pipeline shows active deals only, and
// includeArchived=true switches to the archived deals instead of mixing
// them into the pipeline.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	archived := r.URL.Query().Get("includeArchived") == "true"
	view, err := h.Service.List(req, archived)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
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

	d, err := h.Service.Get(req, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d)
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

	var in UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	d, err := h.Service.Update(req, uint(id), &in)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d)
}

// SoftDelete handles DELETE /deals/{id}: archive, not removal.
func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.Service.SoftDelete(req, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d)
}

// Restore handles POST /deals/{id}/restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.Service.Restore(req, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d)
}
