package deal

import "time"

// Stage of a deal. Any authorized update may set any stage; deals reopen in
// real sales processes. CLOSED_WON and CLOSED_LOST are the two
// terminal-closed stages.
type Stage string

const (
	StageQualification      Stage = "QUALIFICATION"
	StageNeedsAnalysis      Stage = "NEEDS_ANALYSIS"
	StageValueProposition   Stage = "VALUE_PROPOSITION"
	StageProposalPriceQuote Stage = "PROPOSAL_PRICE_QUOTE"
	StageNegotiation        Stage = "NEGOTIATION"
	StageClosedWon          Stage = "CLOSED_WON"
	StageClosedLost         Stage = "CLOSED_LOST"
)

// AllStages in funnel order; the pipeline view always carries all seven
// buckets.
var AllStages = []Stage{
	StageQualification,
	StageNeedsAnalysis,
	StageValueProposition,
	StageProposalPriceQuote,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

func (s Stage) Valid() bool {
	for _, st := range AllStages {
		if s == st {
			return true
		}
	}
	return false
}

// Closed reports whether s is one of the terminal-closed stages.
func (s Stage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Deal is an opportunity under a client. Soft delete keeps the row; archived
// deals leave the active listings and aggregates but stay restorable, and an
// archived won deal keeps its lifetime-value contribution.
type Deal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Currency string  `gorm:"type:varchar(8);default:'USD'" json:"currency"`

	Stage             Stage      `gorm:"type:varchar(24);default:'QUALIFICATION'" json:"stage"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	ActualCloseDate   *time.Time `json:"actualCloseDate,omitempty"`

	ClientID uint `gorm:"index" json:"clientId"`
	OwnerID  uint `gorm:"index" json:"ownerId"`

	IsDeleted   bool       `gorm:"default:false;index" json:"isDeleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	DeletedByID *uint      `json:"deletedById,omitempty"`
}
