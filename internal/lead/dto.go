package lead

import (
	"strings"
	"time"

	"github.com/vantagecrm/api/internal/apperr"
)

// CreateLeadRequest is the normalized create input. Validate must pass before
// the engine runs.
type CreateLeadRequest struct {
	Name           string         `json:"name"`
	CompanyName    string         `json:"companyName"`
	Email          string         `json:"email"`
	Mobile         string         `json:"mobile"`
	Source         *Source        `json:"source"`
	SourceDetails  string         `json:"sourceDetails"`
	PipelineStage  *PipelineStage `json:"pipelineStage"`
	Status         *Status        `json:"status"`
	Score          *int           `json:"score"`
	Priority       *Priority      `json:"priority"`
	Tags           []string       `json:"tags"`
	OwnerID        *uint          `json:"ownerId"`
	EstimatedValue *float64       `json:"estimatedValue"`
	NextFollowUpAt *time.Time     `json:"nextFollowUpAt"`
	InitialNotes   string         `json:"initialNotes"`
}

// Validate normalizes the input and reports the first field-level problem.
func (r *CreateLeadRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if len(r.Name) < 2 || len(r.Name) > 100 {
		return apperr.Validation("name", "must be between 2 and 100 characters")
	}
	if r.Source != nil && !r.Source.Valid() {
		return apperr.Validation("source", "unknown source")
	}
	if r.PipelineStage != nil && !r.PipelineStage.Valid() {
		return apperr.Validation("pipelineStage", "unknown pipeline stage")
	}
	if r.Status != nil {
		if !r.Status.Valid() {
			return apperr.Validation("status", "unknown status")
		}
		if *r.Status == StatusConverted {
			return apperr.Validation("status", "CONVERTED is set by conversion only")
		}
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return apperr.Validation("priority", "unknown priority")
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > 100) {
		return apperr.Validation("score", "must be between 0 and 100")
	}
	if r.EstimatedValue != nil && *r.EstimatedValue < 0 {
		return apperr.Validation("estimatedValue", "must be >= 0")
	}
	return nil
}

// UpdateLeadRequest is a partial patch; nil fields are left untouched.
// OwnerID is deliberately absent: ownership is fixed at creation.
type UpdateLeadRequest struct {
	Name           *string        `json:"name"`
	CompanyName    *string        `json:"companyName"`
	Email          *string        `json:"email"`
	Mobile         *string        `json:"mobile"`
	Source         *Source        `json:"source"`
	SourceDetails  *string        `json:"sourceDetails"`
	PipelineStage  *PipelineStage `json:"pipelineStage"`
	Status         *Status        `json:"status"`
	Score          *int           `json:"score"`
	Priority       *Priority      `json:"priority"`
	Tags           []string       `json:"tags"`
	NextFollowUpAt *time.Time     `json:"nextFollowUpAt"`
	InitialNotes   *string        `json:"initialNotes"`
}

// Validate reports the first field-level problem in the patch.
func (r *UpdateLeadRequest) Validate() error {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		if len(*r.Name) < 2 || len(*r.Name) > 100 {
			return apperr.Validation("name", "must be between 2 and 100 characters")
		}
	}
	if r.Source != nil && !r.Source.Valid() {
		return apperr.Validation("source", "unknown source")
	}
	if r.PipelineStage != nil && !r.PipelineStage.Valid() {
		return apperr.Validation("pipelineStage", "unknown pipeline stage")
	}
	if r.Status != nil {
		if !r.Status.Valid() {
			return apperr.Validation("status", "unknown status")
		}
		if *r.Status == StatusConverted {
			return apperr.Validation("status", "CONVERTED is set by conversion only")
		}
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return apperr.Validation("priority", "unknown priority")
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > 100) {
		return apperr.Validation("score", "must be between 0 and 100")
	}
	return nil
}

// ConvertLeadRequest carries the estimated value the new client starts with.
type ConvertLeadRequest struct {
	EstimatedValue float64 `json:"estimatedValue"`
}

func (r *ConvertLeadRequest) Validate() error {
	if r.EstimatedValue < 0 {
		return apperr.Validation("estimatedValue", "must be >= 0")
	}
	return nil
}
