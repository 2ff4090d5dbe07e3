// Package activity records the audit trail the core operations append to.
package activity

import "time"

// Type labels what happened.
type Type string

const (
	TypeLeadCreated   Type = "LEAD_CREATED"
	TypeLeadUpdated   Type = "LEAD_UPDATED"
	TypeLeadDeleted   Type = "LEAD_DELETED"
	TypeLeadConverted Type = "LEAD_CONVERTED"

	TypeDealCreated      Type = "DEAL_CREATED"
	TypeDealStageChanged Type = "DEAL_STAGE_CHANGED"
	TypeDealArchived     Type = "DEAL_ARCHIVED"
	TypeDealRestored     Type = "DEAL_RESTORED"

	TypeNoteAdded     Type = "NOTE_ADDED"
	TypeTaskAdded     Type = "TASK_ADDED"
	TypeMeetingAdded  Type = "MEETING_ADDED"
	TypeDocumentAdded Type = "DOCUMENT_ADDED"
)

// Activity is one entry in the log. Exactly one of LeadID/ClientID/DealID is
// usually set, but conversion entries reference both the lead and the client.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Type    Type   `gorm:"type:varchar(32);index" json:"type"`
	Summary string `json:"summary"`
	UserID  uint   `gorm:"index" json:"userId"`

	LeadID   *uint `gorm:"index" json:"leadId,omitempty"`
	ClientID *uint `gorm:"index" json:"clientId,omitempty"`
	DealID   *uint `gorm:"index" json:"dealId,omitempty"`
}
