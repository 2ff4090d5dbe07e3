package user

import (
	"time"

	"github.com/vantagecrm/api/internal/authz"
)

// User is an authenticated principal. Leads, clients and deals reference it
// by owner/account-manager id.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Username            string     `gorm:"uniqueIndex" json:"username"`
	FullName            string     `json:"fullName"`
	PasswordHash        string     `json:"-"`
	Role                authz.Role `gorm:"type:varchar(16)" json:"role"`
	IsActive            bool       `gorm:"default:true" json:"isActive"`
	NeedsPasswordChange bool       `json:"needsPasswordChange"`
}
