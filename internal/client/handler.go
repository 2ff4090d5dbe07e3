package client

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
)

// Handler wraps DB and repository for client CRUD and aggregates.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Activities activity.Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Activities: activity.NewRepository(), Log: log}
}

// Create registers a client directly (conversion is the other creation path,
// owned by the lead engine). The account manager defaults to the requester;
// only ADMIN or MANAGER may assign someone else.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var in createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	if err := in.validate(); err != nil {
		apperr.Write(w, err)
		return
	}

	accountManagerID := req.UserID
	if in.AccountManagerID != nil && *in.AccountManagerID != req.UserID {
		if req.Role == authz.RoleEmployee {
			apperr.Write(w, apperr.Forbidden("employees cannot assign another account manager"))
			return
		}
		accountManagerID = *in.AccountManagerID
	}

	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}

	c := Client{
		CompanyName:      in.CompanyName,
		PrimaryContact:   in.PrimaryContact,
		Email:            strings.TrimSpace(in.Email),
		Mobile:           strings.TrimSpace(in.Mobile),
		Status:           status,
		EstimatedValue:   in.EstimatedValue,
		AccountManagerID: accountManagerID,
	}
	if err := h.Repository.Save(h.DB, &c); err != nil {
		h.Log.Error("client create failed", zap.Error(err))
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// List returns clients visible to the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	list, err := h.Repository.List(h.DB, authz.ClientScope(req))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get returns one client together with its read-time deal aggregates.
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

	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	totals, err := h.Repository.Totals(h.DB, c.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"client":           c,
		"totalDealsValue":  totals.TotalDealsValue,
		"activeDealsCount": totals.ActiveDealsCount,
	})
}

// ListActivities returns the activity timeline recorded against one client.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	entries, err := h.Activities.ListByClient(h.DB, c.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// Update applies a partial patch. LifetimeValue is not patchable here; it is
// maintained by the deal engine and the admin override endpoint.
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

	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	var patch updateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	if err := patch.validate(); err != nil {
		apperr.Write(w, err)
		return
	}

	if patch.CompanyName != nil {
		c.CompanyName = strings.TrimSpace(*patch.CompanyName)
	}
	if patch.PrimaryContact != nil {
		c.PrimaryContact = strings.TrimSpace(*patch.PrimaryContact)
	}
	if patch.Email != nil {
		c.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Mobile != nil {
		c.Mobile = strings.TrimSpace(*patch.Mobile)
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.EstimatedValue != nil {
		c.EstimatedValue = patch.EstimatedValue
	}

	if err := h.Repository.Update(h.DB, c); err != nil {
		h.Log.Error("client update failed", zap.Error(err), zap.Uint("clientId", c.ID))
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// OverrideLifetimeValue sets the lifetime value absolutely. Admin only
// (enforced by route middleware); the ordinary mutation path is the deal
// engine's relative delta.
func (h *Handler) OverrideLifetimeValue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.Write(w, apperr.Validation("id", "invalid id"))
		return
	}

	var in overrideLifetimeValueRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	if in.LifetimeValue < 0 {
		apperr.Write(w, apperr.Validation("lifetimeValue", "must be >= 0"))
		return
	}

	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}

	if err := h.Repository.SetLifetimeValue(h.DB, c.ID, in.LifetimeValue); err != nil {
		h.Log.Error("lifetime value override failed", zap.Error(err), zap.Uint("clientId", c.ID))
		apperr.Write(w, err)
		return
	}
	c.LifetimeValue = in.LifetimeValue

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}
