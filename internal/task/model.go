package task

import "time"

// Task is a follow-up item attached to a lead or client.
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Title       string     `json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	AssigneeID  uint       `json:"assigneeId"`

	LeadID   *uint `gorm:"index" json:"leadId,omitempty"`
	ClientID *uint `gorm:"index" json:"clientId,omitempty"`
}
