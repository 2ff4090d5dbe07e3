package deal

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

// Service is the deal lifecycle engine: the stage machine whose transitions
// drive the client's lifetime value, plus archive/restore.
type Service struct {
	DB      *gorm.DB
	Repo    Repository
	Clients client.Repository
	Users   user.Repository
	Log     *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		DB:      db,
		Repo:    NewRepository(),
		Clients: client.NewRepository(),
		Users:   user.NewRepository(),
		Log:     log,
	}
}

// StageBucket is one pipeline column: the deals in that stage and their
// summed value.
type StageBucket struct {
	Deals []Deal  `json:"deals"`
	Value float64 `json:"value"`
}

// PipelineView is the grouped deal listing. TotalValue covers open deals
// only: closed deals appear in their buckets but not in the open-pipeline
// total.
type PipelineView struct {
	DealsByStage map[Stage]StageBucket `json:"dealsByStage"`
	StageValues  map[Stage]float64     `json:"stageValues"`
	TotalValue   float64               `json:"totalValue"`
}

// Create opens a deal under a client. The owner defaults to the client's
// account manager; creating directly at CLOSED_WON increments the client's
// lifetime value in the same transaction.
func (s *Service) Create(req authz.Requester, clientID uint, in *CreateDealRequest) (*Deal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c, err := s.Clients.FindByID(s.DB, clientID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessClient(req, c.AccountManagerID) {
		return nil, apperr.Forbidden("access denied")
	}

	ownerID := c.AccountManagerID
	if in.OwnerID != nil && *in.OwnerID != ownerID {
		if req.Role == authz.RoleEmployee {
			return nil, apperr.Forbidden("employees cannot assign another deal owner")
		}
		if _, err := s.Users.FindByID(s.DB, *in.OwnerID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("ownerId", "user does not exist")
			}
			return nil, err
		}
		ownerID = *in.OwnerID
	}

	stage := StageQualification
	if in.Stage != nil {
		stage = *in.Stage
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	d := Deal{
		Title:             in.Title,
		Value:             *in.Value,
		Currency:          currency,
		Stage:             stage,
		ExpectedCloseDate: in.ExpectedCloseDate,
		ClientID:          c.ID,
		OwnerID:           ownerID,
	}
	if in.Probability != nil {
		d.Probability = *in.Probability
	}
	if stage.Closed() {
		now := time.Now()
		d.ActualCloseDate = &now
	}

	// Conversion-on-create is a valid path: born won counts immediately.
	var delta float64
	if stage == StageClosedWon {
		delta = d.Value
	}

	entry := activity.Activity{
		Type:    activity.TypeDealCreated,
		Summary: fmt.Sprintf("deal %q created in stage %s", d.Title, d.Stage),
		UserID:  req.UserID,
	}
	if err := s.Repo.CreateWithDelta(s.DB, &d, delta, &entry); err != nil {
		s.Log.Error("deal create failed", zap.Error(err), zap.Uint("clientId", c.ID))
		return nil, err
	}

	if delta > 0 {
		middleware.RecordDealWon(delta)
	}
	return &d, nil
}

// Update applies a partial patch with the stage-transition side effects:
// entering CLOSED_WON adds the deal's value to the client's lifetime value,
// leaving it subtracts the pre-patch value back out. The strict old/new
// inequality means WON→WON never double-counts.
func (s *Service) Update(req authz.Requester, id uint, in *UpdateDealRequest) (*Deal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessDeal(req, existing.OwnerID) {
		return nil, apperr.Forbidden("access denied")
	}

	// The patch is applied against the locked row, not the snapshot above,
	// so the stage delta always comes from committed state. Two concurrent
	// WON transitions serialize: the second sees WON and derives delta 0.
	entry := activity.Activity{
		Type:   activity.TypeDealStageChanged,
		UserID: req.UserID,
	}
	var applied float64
	d, err := s.Repo.Mutate(s.DB, id, &entry, func(d *Deal) (float64, error) {
		if d.IsDeleted {
			return 0, apperr.Conflict("deal is archived; restore it first")
		}

		oldStage := d.Stage
		oldValue := d.Value
		newStage := oldStage
		if in.Stage != nil {
			newStage = *in.Stage
		}

		newValue := oldValue
		if in.Value != nil {
			newValue = *in.Value
		}

		var delta float64
		switch {
		case oldStage != StageClosedWon && newStage == StageClosedWon:
			delta = newValue
		case oldStage == StageClosedWon && newStage != StageClosedWon:
			// Reversal undoes what was counted, not what the patch says.
			delta = -oldValue
		}

		if in.Title != nil {
			d.Title = *in.Title
		}
		d.Value = newValue
		if in.Currency != nil {
			d.Currency = *in.Currency
		}
		if in.Probability != nil {
			d.Probability = *in.Probability
		}
		if in.ExpectedCloseDate != nil {
			d.ExpectedCloseDate = in.ExpectedCloseDate
		}
		d.Stage = newStage
		if newStage.Closed() {
			now := time.Now()
			d.ActualCloseDate = &now
		}

		entry.Summary = fmt.Sprintf("deal %q moved %s -> %s", d.Title, oldStage, newStage)
		applied = delta
		return delta, nil
	})
	if err != nil {
		s.Log.Error("deal update failed", zap.Error(err), zap.Uint("dealId", id))
		return nil, err
	}

	if applied > 0 {
		middleware.RecordDealWon(applied)
	}
	return d, nil
}

// SoftDelete archives a closed deal. Open deals cannot be archived, and
// archiving never reverses a won deal's lifetime-value contribution.
func (s *Service) SoftDelete(req authz.Requester, id uint) (*Deal, error) {
	existing, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanArchiveDeal(req, existing.OwnerID) {
		return nil, apperr.Forbidden("not allowed to archive this deal")
	}

	entry := activity.Activity{
		Type:   activity.TypeDealArchived,
		UserID: req.UserID,
	}
	d, err := s.Repo.Mutate(s.DB, id, &entry, func(d *Deal) (float64, error) {
		if !d.Stage.Closed() {
			return 0, apperr.Validation("stage", "only closed deals can be archived")
		}
		if d.IsDeleted {
			return 0, apperr.Conflict("deal is already archived")
		}

		now := time.Now()
		d.IsDeleted = true
		d.DeletedAt = &now
		d.DeletedByID = &req.UserID
		entry.Summary = fmt.Sprintf("deal %q archived", d.Title)
		return 0, nil
	})
	if err != nil {
		s.Log.Error("deal archive failed", zap.Error(err), zap.Uint("dealId", id))
		return nil, err
	}
	return d, nil
}

// Restore clears the archive fields and returns the deal to the default
// listing.
func (s *Service) Restore(req authz.Requester, id uint) (*Deal, error) {
	existing, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanRestoreDeal(req, existing.OwnerID) {
		return nil, apperr.Forbidden("not allowed to restore this deal")
	}

	entry := activity.Activity{
		Type:   activity.TypeDealRestored,
		UserID: req.UserID,
	}
	d, err := s.Repo.Mutate(s.DB, id, &entry, func(d *Deal) (float64, error) {
		if !d.IsDeleted {
			return 0, apperr.Conflict("deal is not archived")
		}

		d.IsDeleted = false
		d.DeletedAt = nil
		d.DeletedByID = nil
		entry.Summary = fmt.Sprintf("deal %q restored", d.Title)
		return 0, nil
	})
	if err != nil {
		s.Log.Error("deal restore failed", zap.Error(err), zap.Uint("dealId", id))
		return nil, err
	}
	return d, nil
}

// Get returns one deal after the existence-then-authorization check.
func (s *Service) Get(req authz.Requester, id uint) (*Deal, error) {
	d, err := s.Repo.FindByID(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessDeal(req, d.OwnerID) {
		return nil, apperr.Forbidden("access denied")
	}
	return d, nil
}

// List groups the caller's visible deals into the fixed seven-stage buckets,
// recomputed per request.
func (s *Service) List(req authz.Requester, archived bool) (*PipelineView, error) {
	deals, err := s.Repo.List(s.DB, authz.DealScope(req), archived)
	if err != nil {
		return nil, err
	}
	return BuildPipelineView(deals), nil
}

// BuildPipelineView derives the grouped projection from a deal set. All seven
// buckets are always present; TotalValue sums open stages only.
func BuildPipelineView(deals []Deal) *PipelineView {
	view := &PipelineView{
		DealsByStage: make(map[Stage]StageBucket, len(AllStages)),
		StageValues:  make(map[Stage]float64, len(AllStages)),
	}
	for _, st := range AllStages {
		view.DealsByStage[st] = StageBucket{Deals: []Deal{}}
		view.StageValues[st] = 0
	}
	for _, d := range deals {
		bucket := view.DealsByStage[d.Stage]
		bucket.Deals = append(bucket.Deals, d)
		bucket.Value += d.Value
		view.DealsByStage[d.Stage] = bucket
		view.StageValues[d.Stage] += d.Value
		if !d.Stage.Closed() {
			view.TotalValue += d.Value
		}
	}
	return view
}
