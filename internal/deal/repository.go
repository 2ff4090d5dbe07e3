package deal

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vantagecrm/api/internal/activity"
	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/authz"
	"github.com/vantagecrm/api/internal/client"
)

type Repository interface {
	// CreateWithDelta persists the deal and, when delta is non-zero, applies
	// it to the client's lifetime value in the same transaction.
	CreateWithDelta(db *gorm.DB, d *Deal, delta float64, entry *activity.Activity) error
	// FindByID returns the deal regardless of its archived flag.
	FindByID(db *gorm.DB, id uint) (*Deal, error)
	List(db *gorm.DB, scope authz.AccessScope, archived bool) ([]Deal, error)
	// Mutate re-reads the deal under a row lock, runs fn against the fresh
	// row, saves it and applies the lifetime-value delta fn returns, all in
	// one transaction. Two racing mutations of the same deal serialize on the
	// lock, so fn always derives its delta from committed state.
	Mutate(db *gorm.DB, id uint, entry *activity.Activity, fn func(d *Deal) (float64, error)) (*Deal, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// addToLifetimeValue is a relative increment so two racing stage transitions
// serialize on the row instead of overwriting each other.
func addToLifetimeValue(tx *gorm.DB, clientID uint, delta float64) error {
	return tx.Model(&client.Client{}).
		Where("id = ?", clientID).
		UpdateColumn("lifetime_value", gorm.Expr("lifetime_value + ?", delta)).Error
}

func (r *repositoryImpl) CreateWithDelta(db *gorm.DB, d *Deal, delta float64, entry *activity.Activity) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		if delta != 0 {
			if err := addToLifetimeValue(tx, d.ClientID, delta); err != nil {
				return err
			}
		}
		entry.DealID = &d.ID
		entry.ClientID = &d.ClientID
		return tx.Create(entry).Error
	})
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Deal, error) {
	var d Deal
	if err := db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repositoryImpl) List(db *gorm.DB, scope authz.AccessScope, archived bool) ([]Deal, error) {
	q := db.Where("is_deleted = ?", archived).Order("created_at DESC")
	if !scope.All {
		q = q.Where("owner_id = ?", scope.OwnerID)
	}
	var list []Deal
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Mutate(db *gorm.DB, id uint, entry *activity.Activity, fn func(d *Deal) (float64, error)) (*Deal, error) {
	var out *Deal
	err := db.Transaction(func(tx *gorm.DB) error {
		var d Deal
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		delta, err := fn(&d)
		if err != nil {
			return err
		}

		if err := tx.Save(&d).Error; err != nil {
			return err
		}
		if delta != 0 {
			if err := addToLifetimeValue(tx, d.ClientID, delta); err != nil {
				return err
			}
		}

		entry.DealID = &d.ID
		entry.ClientID = &d.ClientID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		out = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
