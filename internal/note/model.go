package note

import "time"

// Note is a free-text child record of a lead or client.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Body     string `gorm:"type:text" json:"body"`
	AuthorID uint   `json:"authorId"`

	LeadID   *uint `gorm:"index" json:"leadId,omitempty"`
	ClientID *uint `gorm:"index" json:"clientId,omitempty"`
}
