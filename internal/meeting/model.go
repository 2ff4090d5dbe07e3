package meeting

import "time"

// Meeting is a scheduled appointment attached to a lead or client.
type Meeting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Title           string    `json:"title"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        string    `json:"location,omitempty"`
	OrganizerID     uint      `json:"organizerId"`

	LeadID   *uint `gorm:"index" json:"leadId,omitempty"`
	ClientID *uint `gorm:"index" json:"clientId,omitempty"`
}
