package lead

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/activity"
	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/authz"
	"github.com/vantagecrm/api/internal/client"
	"github.com/vantagecrm/api/internal/middleware"
	"github.com/vantagecrm/api/internal/user"
)

// Service is the lead lifecycle engine: creation, updates, hard delete and
// the one-way conversion into a client.
type Service struct {
	DB         *gorm.DB
	Repo       Repository
	Users      user.Repository
	Activities activity.Repository
	Log        *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		DB:         db,
		Repo:       NewRepository(),
		Users:      user.NewRepository(),
		Activities: activity.NewRepository(),
		Log:        log,
	}
}

// ConversionResult returns both sides of a successful conversion.
type ConversionResult struct {
	Lead   *Lead          `json:"lead"`
	Client *client.Client `json:"client"`
}

// LeadList is the listing projection: the visible leads plus their count per
// pipeline stage.
type LeadList struct {
	Leads        []Lead           `json:"leads"`
	CountByStage map[string]int64 `json:"countByStage"`
}

// Stats are the grouped lead counts under the caller's scope.
type Stats struct {
	ByPipelineStage map[string]int64 `json:"byPipelineStage"`
	ByStatus        map[string]int64 `json:"byStatus"`
	BySource        map[string]int64 `json:"bySource"`
	ByPriority      map[string]int64 `json:"byPriority"`
}

// resolveOwner applies the assignment policy: owner defaults to the
// requester; ADMIN may assign anyone, MANAGER only themselves or an EMPLOYEE,
// EMPLOYEE never assigns someone else.
func (s *Service) resolveOwner(req authz.Requester, requested *uint) (uint, error) {
	if requested == nil || *requested == req.UserID {
		return req.UserID, nil
	}

	switch req.Role {
	case authz.RoleEmployee:
		return 0, apperr.Forbidden("employees cannot assign another owner")
	case authz.RoleManager:
		assignee, err := s.Users.FindByID(s.DB, *requested)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return 0, apperr.Validation("ownerId", "user does not exist")
			}
			return 0, err
		}
		if assignee.Role != authz.RoleEmployee {
			return 0, apperr.Forbidden("managers may only assign leads to employees")
		}
		return assignee.ID, nil
	default: // ADMIN
		assignee, err := s.Users.FindByID(s.DB, *requested)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return 0, apperr.Validation("ownerId", "user does not exist")
			}
			return 0, err
		}
		return assignee.ID, nil
	}
}

// Create validates input, applies defaults and persists the new lead.
func (s *Service) Create(req authz.Requester, in *CreateLeadRequest) (*Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ownerID, err := s.resolveOwner(req, in.OwnerID)
	if err != nil {
		return nil, err
	}

	l := Lead{
		Name:           in.Name,
		CompanyName:    in.CompanyName,
		Email:          in.Email,
		Mobile:         in.Mobile,
		Source:         SourceOther,
		SourceDetails:  in.SourceDetails,
		PipelineStage:  StageNew,
		Status:         StatusNew,
		Priority:       PriorityMedium,
		Tags:           []string{},
		OwnerID:        ownerID,
		EstimatedValue: in.EstimatedValue,
		NextFollowUpAt: in.NextFollowUpAt,
		InitialNotes:   in.InitialNotes,
	}
	if in.Source != nil {
		l.Source = *in.Source
	}
	if in.PipelineStage != nil {
		l.PipelineStage = *in.PipelineStage
	}
	if in.Status != nil {
		l.Status = *in.Status
	}
	if in.Priority != nil {
		l.Priority = *in.Priority
	}
	if in.Score != nil {
		l.Score = *in.Score
	}
	if in.Tags != nil {
		l.Tags = in.Tags
	}

	if err := s.Repo.Save(s.DB, &l); err != nil {
		s.Log.Error("lead create failed", zap.Error(err))
		return nil, err
	}

	s.record(&activity.Activity{
		Type:    activity.TypeLeadCreated,
		Summary: fmt.Sprintf("lead %q created", l.Name),
		UserID:  req.UserID,
		LeadID:  &l.ID,
	})
	return &l, nil
}

// Update applies a partial patch. Every update counts as contact activity and
// stamps lastContactedAt, whichever fields changed. A converted lead keeps
// its frozen status and pipeline stage.
func (s *Service) Update(req authz.Requester, id uint, in *UpdateLeadRequest) (*Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	l, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		return nil, apperr.Forbidden("access denied")
	}

	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.CompanyName != nil {
		l.CompanyName = *in.CompanyName
	}
	if in.Email != nil {
		l.Email = *in.Email
	}
	if in.Mobile != nil {
		l.Mobile = *in.Mobile
	}
	if in.Source != nil {
		l.Source = *in.Source
	}
	if in.SourceDetails != nil {
		l.SourceDetails = *in.SourceDetails
	}
	if !l.IsConverted {
		if in.PipelineStage != nil {
			l.PipelineStage = *in.PipelineStage
		}
		if in.Status != nil {
			l.Status = *in.Status
		}
	}
	if in.Score != nil {
		l.Score = *in.Score
	}
	if in.Priority != nil {
		l.Priority = *in.Priority
	}
	if in.Tags != nil {
		l.Tags = in.Tags
	}
	if in.NextFollowUpAt != nil {
		l.NextFollowUpAt = in.NextFollowUpAt
	}
	if in.InitialNotes != nil {
		l.InitialNotes = *in.InitialNotes
	}

	now := time.Now()
	l.LastContactedAt = &now

	if err := s.Repo.Update(s.DB, l); err != nil {
		s.Log.Error("lead update failed", zap.Error(err), zap.Uint("leadId", l.ID))
		return nil, err
	}

	s.record(&activity.Activity{
		Type:    activity.TypeLeadUpdated,
		Summary: fmt.Sprintf("lead %q updated", l.Name),
		UserID:  req.UserID,
		LeadID:  &l.ID,
	})
	return l, nil
}

// Delete hard-deletes a lead. EMPLOYEE is denied regardless of ownership.
func (s *Service) Delete(req authz.Requester, id uint) error {
	l, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteLead(req) {
		return apperr.Forbidden("only admins and managers may delete leads")
	}

	if err := s.Repo.Delete(s.DB, id); err != nil {
		s.Log.Error("lead delete failed", zap.Error(err), zap.Uint("leadId", id))
		return err
	}

	s.record(&activity.Activity{
		Type:    activity.TypeLeadDeleted,
		Summary: fmt.Sprintf("lead %q deleted", l.Name),
		UserID:  req.UserID,
	})
	return nil
}

// Convert atomically turns the lead into a client. The lead converts at most
// once; a second call fails with a conflict and creates nothing.
func (s *Service) Convert(req authz.Requester, id uint, in *ConvertLeadRequest) (*ConversionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	l, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		return nil, apperr.Forbidden("access denied")
	}
	if l.IsConverted {
		return nil, apperr.Conflict("lead is already converted")
	}

	companyName := l.CompanyName
	if companyName == "" {
		companyName = l.Name
	}
	c := client.Client{
		CompanyName:      companyName,
		PrimaryContact:   l.Name,
		Email:            l.Email,
		Mobile:           l.Mobile,
		Status:           client.StatusActive,
		LifetimeValue:    in.EstimatedValue,
		EstimatedValue:   &in.EstimatedValue,
		AccountManagerID: l.OwnerID,
		OriginLeadID:     &l.ID,
	}

	l.EstimatedValue = &in.EstimatedValue
	entry := activity.Activity{
		Type:    activity.TypeLeadConverted,
		Summary: fmt.Sprintf("lead %q converted to client", l.Name),
		UserID:  req.UserID,
	}

	if err := s.Repo.Convert(s.DB, l, &c, &entry); err != nil {
		s.Log.Error("lead conversion failed", zap.Error(err), zap.Uint("leadId", l.ID))
		return nil, err
	}

	middleware.RecordLeadConverted()
	s.Log.Info("lead converted",
		zap.Uint("leadId", l.ID),
		zap.Uint("clientId", c.ID),
		zap.Float64("estimatedValue", in.EstimatedValue))
	return &ConversionResult{Lead: l, Client: &c}, nil
}

// List returns the visible leads plus the per-stage counts.
func (s *Service) List(req authz.Requester) (*LeadList, error) {
	scope := authz.LeadScope(req)
	leads, err := s.Repo.List(s.DB, scope)
	if err != nil {
		return nil, err
	}
	byStage, err := s.Repo.CountByColumn(s.DB, scope, "pipeline_stage")
	if err != nil {
		return nil, err
	}
	return &LeadList{Leads: leads, CountByStage: byStage}, nil
}

// StatsFor recomputes the grouped counts for the caller's scope.
func (s *Service) StatsFor(req authz.Requester) (*Stats, error) {
	scope := authz.LeadScope(req)

	byStage, err := s.Repo.CountByColumn(s.DB, scope, "pipeline_stage")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.Repo.CountByColumn(s.DB, scope, "status")
	if err != nil {
		return nil, err
	}
	bySource, err := s.Repo.CountByColumn(s.DB, scope, "source")
	if err != nil {
		return nil, err
	}
	byPriority, err := s.Repo.CountByColumn(s.DB, scope, "priority")
	if err != nil {
		return nil, err
	}

	return &Stats{
		ByPipelineStage: byStage,
		ByStatus:        byStatus,
		BySource:        bySource,
		ByPriority:      byPriority,
	}, nil
}

// Get returns one lead after the existence-then-authorization check.
func (s *Service) Get(req authz.Requester, id uint) (*Lead, error) {
	l, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		return nil, apperr.Forbidden("access denied")
	}
	return l, nil
}

// Timeline returns the activity entries recorded against one lead.
func (s *Service) Timeline(req authz.Requester, id uint) ([]activity.Activity, error) {
	l, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessLead(req, l.OwnerID) {
		return nil, apperr.Forbidden("access denied")
	}
	return s.Activities.ListByLead(s.DB, l.ID)
}

// record appends an activity entry; failures are logged, never fatal.
func (s *Service) record(entry *activity.Activity) {
	if err := s.Activities.Save(s.DB, entry); err != nil {
		s.Log.Warn("activity record failed", zap.Error(err), zap.String("type", string(entry.Type)))
	}
}
