package deal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vantagecrm/api/internal/auth"
	"github.com/vantagecrm/api/internal/authz"
)

func authedRequest(method, target string, body string, userID uint, role authz.Role) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(r.Context(), auth.CtxUserID, userID)
	ctx = context.WithValue(ctx, auth.CtxRole, role)
	return r.WithContext(ctx)
}

func newTestHandler(repo *mockDealRepo, clients *mockClientRepo) *Handler {
	return NewHandler(&Service{Repo: repo, Clients: clients, Users: &mockUserRepo{}, Log: zap.NewNop()})
}

func TestHandlerUpdateStageTransition(t *testing.T) {
	repo := &mockDealRepo{}
	h := newTestHandler(repo, &mockClientRepo{})

	existing := &Deal{ID: 10, Title: "Annual contract", Value: 1000, Stage: StageNegotiation, ClientID: 3, OwnerID: 7}
	repo.On("FindByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(existing, nil)

	r := authedRequest(http.MethodPut, "/deals/10", `{"stage": "CLOSED_WON"}`, 7, authz.RoleEmployee)
	r = mux.SetURLVars(r, map[string]string{"id": "10"})
	rec := httptest.NewRecorder()

	h.Update(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var d Deal
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, StageClosedWon, d.Stage)
	assert.NotNil(t, d.ActualCloseDate)
	assert.Equal(t, []float64{1000}, repo.deltas)
}

func TestHandlerUpdateArchivedConflict(t *testing.T) {
	repo := &mockDealRepo{}
	h := newTestHandler(repo, &mockClientRepo{})

	archived := &Deal{ID: 10, Stage: StageClosedWon, OwnerID: 7, IsDeleted: true}
	repo.On("FindByID", mock.Anything, uint(10)).Return(archived, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(archived, nil)

	r := authedRequest(http.MethodPut, "/deals/10", `{"value": 1}`, 7, authz.RoleEmployee)
	r = mux.SetURLVars(r, map[string]string{"id": "10"})
	rec := httptest.NewRecorder()

	h.Update(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerSoftDeleteOpenDeal(t *testing.T) {
	repo := &mockDealRepo{}
	h := newTestHandler(repo, &mockClientRepo{})

	open := &Deal{ID: 10, Stage: StageQualification, OwnerID: 7}
	repo.On("FindByID", mock.Anything, uint(10)).Return(open, nil)
	repo.On("Mutate", mock.Anything, uint(10), mock.Anything).Return(open, nil)

	r := authedRequest(http.MethodDelete, "/deals/10", "", 7, authz.RoleManager)
	r = mux.SetURLVars(r, map[string]string{"id": "10"})
	rec := httptest.NewRecorder()

	h.SoftDelete(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListArchivedFlag(t *testing.T) {
	t.Run("default view shows active deals only", func(t *testing.T) {
		repo := &mockDealRepo{}
		h := newTestHandler(repo, &mockClientRepo{})

		repo.On("List", mock.Anything, authz.ScopeAll(), false).Return([]Deal{}, nil)

		r := authedRequest(http.MethodGet, "/deals", "", 1, authz.RoleAdmin)
		rec := httptest.NewRecorder()

		h.List(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("includeArchived switches to the archived view", func(t *testing.T) {
		repo := &mockDealRepo{}
		h := newTestHandler(repo, &mockClientRepo{})

		repo.On("List", mock.Anything, authz.ScopeAll(), true).Return([]Deal{}, nil)

		r := authedRequest(http.MethodGet, "/deals?includeArchived=true", "", 1, authz.RoleAdmin)
		rec := httptest.NewRecorder()

		h.List(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})
}
