package document

import "time"

// Document is an external file reference attached to a lead or client. Only
// the URL is stored; the storage backend lives outside this service.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	UploadedBy  uint   `json:"uploadedBy"`

	LeadID   *uint `gorm:"index" json:"leadId,omitempty"`
	ClientID *uint `gorm:"index" json:"clientId,omitempty"`
}
