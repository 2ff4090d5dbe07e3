package user

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/auth"
	"github.com/vantagecrm/api/internal/authz"
	"github.com/vantagecrm/api/internal/utils"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string     `json:"username"`
	FullName string     `json:"fullName"`
	Role     authz.Role `json:"role"`
}

type updateUserRequest struct {
	FullName *string     `json:"fullName"`
	Role     *authz.Role `json:"role"`
	IsActive *bool       `json:"isActive"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Handler wraps DB and repository for user management and login.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Log: log}
}

// Login verifies credentials and issues an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	u, err := h.Repository.FindByUsername(h.DB, strings.TrimSpace(req.Username))
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !u.IsActive || !utils.CheckPassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		h.Log.Error("token generation failed", zap.Error(err))
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token":               token,
		"needsPasswordChange": u.NeedsPasswordChange,
	})
}

// Create registers a new user with a generated temporary password. The
// password is returned exactly once, in this response. Admin only (enforced
// by route middleware).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		apperr.Write(w, apperr.Validation("username", "is required"))
		return
	}
	if !req.Role.Valid() {
		apperr.Write(w, apperr.Validation("role", "must be ADMIN, MANAGER or EMPLOYEE"))
		return
	}

	tempPassword, err := utils.GenerateTemporaryPassword()
	if err != nil {
		apperr.Write(w, err)
		return
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	u := User{
		Username:            req.Username,
		FullName:            strings.TrimSpace(req.FullName),
		PasswordHash:        hash,
		Role:                req.Role,
		IsActive:            true,
		NeedsPasswordChange: true,
	}
	if err := h.Repository.Save(h.DB, &u); err != nil {
		h.Log.Error("user create failed", zap.Error(err))
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user":              u,
		"temporaryPassword": tempPassword,
	})
}

// List returns all users for ADMIN and MANAGER, or just the caller otherwise.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if req.Role == authz.RoleEmployee {
		u, err := h.Repository.FindByID(h.DB, req.UserID)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]User{*u})
		return
	}

	list, err := h.Repository.List(h.DB)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get returns one user; EMPLOYEE may only fetch themselves.
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

	u, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if req.Role == authz.RoleEmployee && req.UserID != u.ID {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// Update patches a user. Role and active-flag changes are ADMIN only; users
// may edit their own full name.
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

	u, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var patch updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}

	isSelf := req.UserID == u.ID
	if !isSelf && req.Role != authz.RoleAdmin {
		apperr.Write(w, apperr.Forbidden("access denied"))
		return
	}
	if (patch.Role != nil || patch.IsActive != nil) && req.Role != authz.RoleAdmin {
		apperr.Write(w, apperr.Forbidden("only an admin may change role or active status"))
		return
	}

	if patch.FullName != nil {
		u.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			apperr.Write(w, apperr.Validation("role", "must be ADMIN, MANAGER or EMPLOYEE"))
			return
		}
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}

	if err := h.Repository.Update(h.DB, u); err != nil {
		h.Log.Error("user update failed", zap.Error(err), zap.Uint("userId", u.ID))
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// ChangePassword lets the authenticated user replace their own password and
// clears the forced-change flag.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req, ok := auth.RequesterFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var payload changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperr.Write(w, apperr.Validation("", "invalid payload"))
		return
	}
	if len(payload.NewPassword) < 8 {
		apperr.Write(w, apperr.Validation("newPassword", "must be at least 8 characters"))
		return
	}

	u, err := h.Repository.FindByID(h.DB, req.UserID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if !utils.CheckPassword(u.PasswordHash, payload.CurrentPassword) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	hash, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	u.PasswordHash = hash
	u.NeedsPasswordChange = false

	if err := h.Repository.Update(h.DB, u); err != nil {
		h.Log.Error("password change failed", zap.Error(err), zap.Uint("userId", u.ID))
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
