package client

import "time"

// Status of a client account.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusChurned  Status = "CHURNED"
	StatusPaused   Status = "PAUSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusChurned, StatusPaused:
		return true
	}
	return false
}

// Client is a converted or directly-created account. LifetimeValue is a
// derived running total maintained by deal stage transitions; it is only set
// directly at creation (from conversion) or by explicit admin override.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CompanyName    string `json:"companyName"`
	PrimaryContact string `json:"primaryContact"`
	Email          string `json:"email,omitempty"`
	Mobile         string `json:"mobile,omitempty"`

	Status         Status   `gorm:"type:varchar(16);default:'ACTIVE'" json:"status"`
	LifetimeValue  float64  `json:"lifetimeValue"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`

	AccountManagerID uint  `gorm:"index" json:"accountManagerId"`
	OriginLeadID     *uint `json:"originLeadId,omitempty"`
}
