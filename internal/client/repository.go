package client

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/authz"
)

// Totals are the per-client read-time deal aggregates.
type Totals struct {
	TotalDealsValue  float64 `json:"totalDealsValue"`
	ActiveDealsCount int64   `json:"activeDealsCount"`
}

type Repository interface {
	Save(db *gorm.DB, c *Client) error
	FindByID(db *gorm.DB, id uint) (*Client, error)
	List(db *gorm.DB, scope authz.AccessScope) ([]Client, error)
	Update(db *gorm.DB, c *Client) error
	// AddToLifetimeValue applies a relative delta so concurrent stage
	// transitions cannot lose updates.
	AddToLifetimeValue(db *gorm.DB, clientID uint, delta float64) error
	SetLifetimeValue(db *gorm.DB, clientID uint, value float64) error
	Totals(db *gorm.DB, clientID uint) (*Totals, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, c *Client) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Client, error) {
	var c Client
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) List(db *gorm.DB, scope authz.AccessScope) ([]Client, error) {
	q := db.Order("company_name")
	if !scope.All {
		q = q.Where("account_manager_id = ?", scope.OwnerID)
	}
	var list []Client
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, c *Client) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) AddToLifetimeValue(db *gorm.DB, clientID uint, delta float64) error {
	return db.Model(&Client{}).
		Where("id = ?", clientID).
		UpdateColumn("lifetime_value", gorm.Expr("lifetime_value + ?", delta)).Error
}

func (r *repositoryImpl) SetLifetimeValue(db *gorm.DB, clientID uint, value float64) error {
	return db.Model(&Client{}).
		Where("id = ?", clientID).
		UpdateColumn("lifetime_value", value).Error
}

func (r *repositoryImpl) Totals(db *gorm.DB, clientID uint) (*Totals, error) {
	var t Totals
	err := db.Table("deals").
		Select("COALESCE(SUM(value), 0) AS total_deals_value").
		Where("client_id = ? AND is_deleted = false", clientID).
		Scan(&t.TotalDealsValue).Error
	if err != nil {
		return nil, err
	}
	err = db.Table("deals").
		Where("client_id = ? AND is_deleted = false AND stage NOT IN ?", clientID,
			[]string{"CLOSED_WON", "CLOSED_LOST"}).
		Count(&t.ActiveDealsCount).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}
