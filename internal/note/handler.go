package note

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/activity"
	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/auth"
	"github.com/vantagecrm/api/internal/authz"
	"github.com/vantagecrm/api/internal/client"
	"github.com/vantagecrm/api/internal/lead"
)

type createNoteRequest struct {
	Body string `json:"body"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Leads      lead.Repository
	Clients    client.Repository
	Activities activity.Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Leads:      lead.NewRepository(),
		Clients:    client.NewRepository(),
		Activities: activity.NewRepository(),
		Log:        log,
	}
}

// CreateForLead handles POST /leads/{id}/notes.
func (h *Handler) CreateForLead(w http.ResponseWriter, r *http.Request) {
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

	l, err := h.Leads.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	h.create(w, r, req.UserID, &l.ID, nil)
}

// CreateForClient handles POST /clients/{id}/notes.
func (h *Handler) CreateForClient(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.Clients.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	h.create(w, r, req.UserID, nil, &c.ID)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, authorID uint, leadID, clientID *uint) {
	var in createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	in.Body = strings.TrimSpace(in.Body)
	if in.Body == "" {
		apperr.Write(w, apperr.Validation("body", "is required"))
		return
	}

	n := Note{Body: in.Body, AuthorID: authorID, LeadID: leadID, ClientID: clientID}
	if err := h.Repository.Save(h.DB, &n); err != nil {
		h.Log.Error("note create failed", zap.Error(err))
		apperr.Write(w, err)
		return
	}

	if err := h.Activities.Save(h.DB, &activity.Activity{
		Type:     activity.TypeNoteAdded,
		Summary:  "note added",
		UserID:   authorID,
		LeadID:   leadID,
		ClientID: clientID,
	}); err != nil {
		h.Log.Warn("activity record failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(n)
}

// ListForLead handles GET /leads/{id}/notes.
func (h *Handler) ListForLead(w http.ResponseWriter, r *http.Request) {
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

	l, err := h.Leads.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	list, err := h.Repository.ListByLead(h.DB, l.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// ListForClient handles GET /clients/{id}/notes.
func (h *Handler) ListForClient(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.Clients.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	list, err := h.Repository.ListByClient(h.DB, c.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Delete handles DELETE /notes/{id}. Only the author, an admin or a manager
// may remove a note.
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

	n, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if req.Role == authz.RoleEmployee && n.AuthorID != req.UserID {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	if err := h.Repository.Delete(h.DB, n.ID); err != nil {
		h.Log.Error("note delete failed", zap.Error(err), zap.Uint("noteId", n.ID))
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
