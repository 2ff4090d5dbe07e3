package document

import (
	"encoding/json"
	"net/http"
	"net/url"
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

type createDocumentRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

func (r *createDocumentRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	if r.Title == "" {
		return apperr.Validation("title", "is required")
	}
	if r.URL == "" {
		return apperr.Validation("url", "is required")
	}
	if _, err := url.ParseRequestURI(r.URL); err != nil {
		return apperr.Validation("url", "must be a valid URL")
	}
	return nil
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

func (h *Handler) create(w http.ResponseWriter, r *http.Request, uploaderID uint, leadID, clientID *uint) {
	var in createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	if err := in.validate(); err != nil {
		apperr.Write(w, err)
		return
	}

	d := Document{
		Title:       in.Title,
		URL:         in.URL,
		ContentType: in.ContentType,
		UploadedBy:  uploaderID,
		LeadID:      leadID,
		ClientID:    clientID,
	}
	if err := h.Repository.Save(h.DB, &d); err != nil {
		h.Log.Error("document create failed", zap.Error(err))
		apperr.Write(w, err)
		return
	}

	if err := h.Activities.Save(h.DB, &activity.Activity{
		Type:     activity.TypeDocumentAdded,
		Summary:  "document " + strconv.Quote(d.Title) + " attached",
		UserID:   uploaderID,
		LeadID:   leadID,
		ClientID: clientID,
	}); err != nil {
		h.Log.Warn("activity record failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d)
}

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

	d, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if req.Role == authz.RoleEmployee && d.UploadedBy != req.UserID {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	if err := h.Repository.Delete(h.DB, d.ID); err != nil {
		h.Log.Error("document delete failed", zap.Error(err), zap.Uint("documentId", d.ID))
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
