package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleManager.Valid())
	assert.True(t, RoleEmployee.Valid())
	assert.False(t, Role("SUPERUSER").Valid())
	assert.False(t, Role("").Valid())
}

func TestLeadScope(t *testing.T) {
	tests := []struct {
		name string
		req  Requester
		want AccessScope
	}{
		{"admin sees all", Requester{UserID: 1, Role: RoleAdmin}, ScopeAll()},
		{"manager sees all", Requester{UserID: 2, Role: RoleManager}, ScopeAll()},
		{"employee sees own", Requester{UserID: 3, Role: RoleEmployee}, ScopeOwnedBy(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LeadScope(tt.req))
			assert.Equal(t, tt.want, ClientScope(tt.req))
		})
	}
}

func TestDealScope(t *testing.T) {
	assert.Equal(t, ScopeAll(), DealScope(Requester{UserID: 1, Role: RoleAdmin}))
	assert.Equal(t, ScopeOwnedBy(2), DealScope(Requester{UserID: 2, Role: RoleManager}))
	assert.Equal(t, ScopeOwnedBy(3), DealScope(Requester{UserID: 3, Role: RoleEmployee}))
}

func TestCanAccessLead(t *testing.T) {
	tests := []struct {
		name    string
		req     Requester
		ownerID uint
		want    bool
	}{
		{"admin any", Requester{UserID: 1, Role: RoleAdmin}, 9, true},
		{"manager any", Requester{UserID: 2, Role: RoleManager}, 9, true},
		{"employee own", Requester{UserID: 3, Role: RoleEmployee}, 3, true},
		{"employee other", Requester{UserID: 3, Role: RoleEmployee}, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessLead(tt.req, tt.ownerID))
			assert.Equal(t, tt.want, CanAccessClient(tt.req, tt.ownerID))
		})
	}
}

func TestCanAccessDeal(t *testing.T) {
	tests := []struct {
		name    string
		req     Requester
		ownerID uint
		want    bool
	}{
		{"admin any", Requester{UserID: 1, Role: RoleAdmin}, 9, true},
		{"manager own", Requester{UserID: 2, Role: RoleManager}, 2, true},
		{"manager other", Requester{UserID: 2, Role: RoleManager}, 9, false},
		{"employee own", Requester{UserID: 3, Role: RoleEmployee}, 3, true},
		{"employee other", Requester{UserID: 3, Role: RoleEmployee}, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessDeal(tt.req, tt.ownerID))
		})
	}
}

func TestCanDeleteLead(t *testing.T) {
	assert.True(t, CanDeleteLead(Requester{UserID: 1, Role: RoleAdmin}))
	assert.True(t, CanDeleteLead(Requester{UserID: 2, Role: RoleManager}))
	assert.False(t, CanDeleteLead(Requester{UserID: 3, Role: RoleEmployee}))
}

func TestCanArchiveAndRestoreDeal(t *testing.T) {
	tests := []struct {
		name    string
		req     Requester
		ownerID uint
		want    bool
	}{
		{"admin any", Requester{UserID: 1, Role: RoleAdmin}, 9, true},
		{"manager own", Requester{UserID: 2, Role: RoleManager}, 2, true},
		{"manager other", Requester{UserID: 2, Role: RoleManager}, 9, false},
		{"employee own denied", Requester{UserID: 3, Role: RoleEmployee}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanArchiveDeal(tt.req, tt.ownerID))
			assert.Equal(t, tt.want, CanRestoreDeal(tt.req, tt.ownerID))
		})
	}
}
