package deal

import (
	"strings"
	"time"

	"github.com/vantagecrm/api/internal/apperr"
)

// CreateDealRequest is the normalized create input.
type CreateDealRequest struct {
	Title             string     `json:"title"`
	Value             *float64   `json:"value"`
	Currency          string     `json:"currency"`
	Stage             *Stage     `json:"stage"`
	Probability       *int       `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
	OwnerID           *uint      `json:"ownerId"`
}

func (r *CreateDealRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return apperr.Validation("title", "is required")
	}
	if r.Value == nil {
		return apperr.Validation("value", "is required")
	}
	if *r.Value < 0 {
		return apperr.Validation("value", "must be >= 0")
	}
	if r.Stage != nil && !r.Stage.Valid() {
		return apperr.Validation("stage", "unknown stage")
	}
	if r.Probability != nil && (*r.Probability < 0 || *r.Probability > 100) {
		return apperr.Validation("probability", "must be between 0 and 100")
	}
	return nil
}

// UpdateDealRequest is a partial patch; nil fields are left untouched.
type UpdateDealRequest struct {
	Title             *string    `json:"title"`
	Value             *float64   `json:"value"`
	Currency          *string    `json:"currency"`
	Stage             *Stage     `json:"stage"`
	Probability       *int       `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
}

func (r *UpdateDealRequest) Validate() error {
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
		if *r.Title == "" {
			return apperr.Validation("title", "cannot be empty")
		}
	}
	if r.Value != nil && *r.Value < 0 {
		return apperr.Validation("value", "must be >= 0")
	}
	if r.Stage != nil && !r.Stage.Valid() {
		return apperr.Validation("stage", "unknown stage")
	}
	if r.Probability != nil && (*r.Probability < 0 || *r.Probability > 100) {
		return apperr.Validation("probability", "must be between 0 and 100")
	}
	return nil
}
