package client

import (
	"strings"

	"github.com/vantagecrm/api/internal/apperr"
)

type createClientRequest struct {
	CompanyName      string   `json:"companyName"`
	PrimaryContact   string   `json:"primaryContact"`
	Email            string   `json:"email"`
	Mobile           string   `json:"mobile"`
	Status           *Status  `json:"status"`
	EstimatedValue   *float64 `json:"estimatedValue"`
	AccountManagerID *uint    `json:"accountManagerId"`
}

func (r *createClientRequest) validate() error {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.PrimaryContact = strings.TrimSpace(r.PrimaryContact)
	if r.CompanyName == "" {
		return apperr.Validation("companyName", "is required")
	}
	if r.PrimaryContact == "" {
		return apperr.Validation("primaryContact", "is required")
	}
	if r.Status != nil && !r.Status.Valid() {
		return apperr.Validation("status", "unknown status")
	}
	if r.EstimatedValue != nil && *r.EstimatedValue < 0 {
		return apperr.Validation("estimatedValue", "must be >= 0")
	}
	return nil
}

type updateClientRequest struct {
	CompanyName    *string  `json:"companyName"`
	PrimaryContact *string  `json:"primaryContact"`
	Email          *string  `json:"email"`
	Mobile         *string  `json:"mobile"`
	Status         *Status  `json:"status"`
	EstimatedValue *float64 `json:"estimatedValue"`
}

func (r *updateClientRequest) validate() error {
	if r.CompanyName != nil && strings.TrimSpace(*r.CompanyName) == "" {
		return apperr.Validation("companyName", "cannot be empty")
	}
	if r.PrimaryContact != nil && strings.TrimSpace(*r.PrimaryContact) == "" {
		return apperr.Validation("primaryContact", "cannot be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		return apperr.Validation("status", "unknown status")
	}
	if r.EstimatedValue != nil && *r.EstimatedValue < 0 {
		return apperr.Validation("estimatedValue", "must be >= 0")
	}
	return nil
}

type overrideLifetimeValueRequest struct {
	LifetimeValue float64 `json:"lifetimeValue"`
}
