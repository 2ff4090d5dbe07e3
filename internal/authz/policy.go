// Package authz is the pure access-control policy: role definitions,
// record-level checks, and the AccessScope values repositories filter by.
// It owns no state and knows nothing about HTTP or the database.
package authz

// Role is the requester's role as carried in the access token.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Requester identifies the authenticated caller of an operation.
type Requester struct {
	UserID uint
	Role   Role
}

// AccessScope is a tagged variant: either everything, or only records owned
// by a given user. It is computed once per request and passed into the query
// layer instead of building role predicates ad hoc.
type AccessScope struct {
	All     bool
	OwnerID uint
}

// ScopeAll grants visibility over every record.
func ScopeAll() AccessScope { return AccessScope{All: true} }

// ScopeOwnedBy restricts visibility to records owned by userID.
func ScopeOwnedBy(userID uint) AccessScope { return AccessScope{OwnerID: userID} }

// LeadScope returns the listing scope for leads. ADMIN and MANAGER see all
// leads; EMPLOYEE only their own.
func LeadScope(req Requester) AccessScope {
	if req.Role == RoleAdmin || req.Role == RoleManager {
		return ScopeAll()
	}
	return ScopeOwnedBy(req.UserID)
}

// ClientScope returns the listing scope for clients, keyed by account
// manager. Same visibility as leads.
func ClientScope(req Requester) AccessScope {
	if req.Role == RoleAdmin || req.Role == RoleManager {
		return ScopeAll()
	}
	return ScopeOwnedBy(req.UserID)
}

// DealScope returns the listing scope for deals. A MANAGER acts as an
// individual contributor here and only sees deals they own.
func DealScope(req Requester) AccessScope {
	if req.Role == RoleAdmin {
		return ScopeAll()
	}
	return ScopeOwnedBy(req.UserID)
}

// CanAccessLead reports whether req may read or mutate a lead owned by
// ownerID.
func CanAccessLead(req Requester, ownerID uint) bool {
	if req.Role == RoleAdmin || req.Role == RoleManager {
		return true
	}
	return req.UserID == ownerID
}

// CanAccessClient reports whether req may read or mutate a client managed by
// accountManagerID.
func CanAccessClient(req Requester, accountManagerID uint) bool {
	if req.Role == RoleAdmin || req.Role == RoleManager {
		return true
	}
	return req.UserID == accountManagerID
}

// CanAccessDeal reports whether req may read or mutate a deal owned by
// ownerID.
func CanAccessDeal(req Requester, ownerID uint) bool {
	if req.Role == RoleAdmin {
		return true
	}
	return req.UserID == ownerID
}

// CanDeleteLead reports whether req may hard-delete leads. EMPLOYEE is denied
// regardless of ownership.
func CanDeleteLead(req Requester) bool {
	return req.Role == RoleAdmin || req.Role == RoleManager
}

// CanArchiveDeal reports whether req may soft-delete a deal owned by ownerID.
// EMPLOYEE is denied regardless of ownership.
func CanArchiveDeal(req Requester, ownerID uint) bool {
	switch req.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return req.UserID == ownerID
	}
	return false
}

// CanRestoreDeal reports whether req may restore an archived deal owned by
// ownerID.
func CanRestoreDeal(req Requester, ownerID uint) bool {
	switch req.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return req.UserID == ownerID
	}
	return false
}
