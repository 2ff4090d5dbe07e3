package lead

import "time"

// PipelineStage is the coarse funnel position of a lead.
type PipelineStage string

const (
	StageNew         PipelineStage = "NEW"
	StageContacted   PipelineStage = "CONTACTED"
	StageProposal    PipelineStage = "PROPOSAL"
	StageNegotiation PipelineStage = "NEGOTIATION"
)

func (s PipelineStage) Valid() bool {
	switch s {
	case StageNew, StageContacted, StageProposal, StageNegotiation:
		return true
	}
	return false
}

// Status is the finer qualification state, orthogonal to the pipeline stage.
// CONVERTED is terminal and only reachable through the conversion operation.
type Status string

const (
	StatusNew               Status = "NEW"
	StatusAttemptingContact Status = "ATTEMPTING_CONTACT"
	StatusContacted         Status = "CONTACTED"
	StatusQualified         Status = "QUALIFIED"
	StatusNurturing         Status = "NURTURING"
	StatusDisqualified      Status = "DISQUALIFIED"
	StatusConverted         Status = "CONVERTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusAttemptingContact, StatusContacted,
		StatusQualified, StatusNurturing, StatusDisqualified, StatusConverted:
		return true
	}
	return false
}

// Source records where the lead came from.
type Source string

const (
	SourceWebsite       Source = "WEBSITE"
	SourceReferral      Source = "REFERRAL"
	SourceColdCall      Source = "COLD_CALL"
	SourceSocialMedia   Source = "SOCIAL_MEDIA"
	SourceEvent         Source = "EVENT"
	SourceAdvertisement Source = "ADVERTISEMENT"
	SourceOther         Source = "OTHER"
)

func (s Source) Valid() bool {
	switch s {
	case SourceWebsite, SourceReferral, SourceColdCall,
		SourceSocialMedia, SourceEvent, SourceAdvertisement, SourceOther:
		return true
	}
	return false
}

// Priority of follow-up.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Lead is a prospect in the funnel. Once IsConverted is set the record is
// frozen in CONVERTED status and carries the id of the client it produced;
// conversion happens at most once.
type Lead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name          string `json:"name"`
	CompanyName   string `json:"companyName,omitempty"`
	Email         string `json:"email,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
	Source        Source `gorm:"type:varchar(16);default:'OTHER'" json:"source"`
	SourceDetails string `json:"sourceDetails,omitempty"`

	PipelineStage PipelineStage `gorm:"type:varchar(16);default:'NEW'" json:"pipelineStage"`
	Status        Status        `gorm:"type:varchar(24);default:'NEW'" json:"status"`
	Score         int           `json:"score"`
	Priority      Priority      `gorm:"type:varchar(8);default:'MEDIUM'" json:"priority"`

	Tags []string `gorm:"type:jsonb;serializer:json" json:"tags"`

	OwnerID uint `gorm:"index" json:"ownerId"`

	IsConverted       bool       `gorm:"default:false" json:"isConverted"`
	ConvertedAt       *time.Time `json:"convertedAt,omitempty"`
	ConvertedClientID *uint      `json:"convertedClientId,omitempty"`

	EstimatedValue  *float64   `json:"estimatedValue,omitempty"`
	LastContactedAt *time.Time `json:"lastContactedAt,omitempty"`
	NextFollowUpAt  *time.Time `json:"nextFollowUpAt,omitempty"`
	InitialNotes    string     `json:"initialNotes,omitempty"`
}
