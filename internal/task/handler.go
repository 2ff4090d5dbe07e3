package task

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

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

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"dueAt"`
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

// resolveLead checks existence then access for the lead route parent.
func (h *Handler) resolveLead(w http.ResponseWriter, r *http.Request) (*uint, bool) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return nil, false
	}
	l, err := h.Leads.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return nil, false
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return nil, false
	}
	return &l.ID, true
}

// resolveClient checks existence then access for the client route parent.
func (h *Handler) resolveClient(w http.ResponseWriter, r *http.Request) (*uint, bool) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return nil, false
	}
	c, err := h.Clients.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return nil, false
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return nil, false
	}
	return &c.ID, true
}

func (h *Handler) CreateForLead(w http.ResponseWriter, r *http.Request) {
	leadID, ok := h.resolveLead(w, r)
	if !ok {
		return
	}
	h.create(w, r, leadID, nil)
}

func (h *Handler) CreateForClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	h.create(w, r, nil, clientID)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, leadID, clientID *uint) {
	req, _ := auth.RequesterFrom(r.Context())

	var in createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		apperr.Write(w, apperr.Validation("title", "is required"))
		return
	}

	t := Task{
		Title:       in.Title,
		Description: in.Description,
		DueAt:       in.DueAt,
		AssigneeID:  req.UserID,
		LeadID:      leadID,
		ClientID:    clientID,
	}
	if err := h.Repository.Save(h.DB, &t); err != nil {
		h.Log.Error("task create failed", zap.Error(err))
		apperr.Write(w, err)
		return
	}

	if err := h.Activities.Save(h.DB, &activity.Activity{
		Type:     activity.TypeTaskAdded,
		Summary:  "task " + strconv.Quote(t.Title) + " added",
		UserID:   req.UserID,
		LeadID:   leadID,
		ClientID: clientID,
	}); err != nil {
		h.Log.Warn("activity record failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

func (h *Handler) ListForLead(w http.ResponseWriter, r *http.Request) {
	leadID, ok := h.resolveLead(w, r)
	if !ok {
		return
	}
	list, err := h.Repository.ListByLead(h.DB, *leadID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.resolveClient(w, r)
	if !ok {
		return
	}
	list, err := h.Repository.ListByClient(h.DB, *clientID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
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

	t, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if req.Role == authz.RoleEmployee && t.AssigneeID != req.UserID {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	if err := h.Repository.Delete(h.DB, t.ID); err != nil {
		h.Log.Error("task delete failed", zap.Error(err), zap.Uint("taskId", t.ID))
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
