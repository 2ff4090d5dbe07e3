package lead

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/activity"
	"github.com/vantagecrm/api/internal/apperr"
	"github.com/vantagecrm/api/internal/authz"
	"github.com/vantagecrm/api/internal/client"
)

type Repository interface {
	Save(db *gorm.DB, l *Lead) error
	FindByID(db *gorm.DB, id uint) (*Lead, error)
	List(db *gorm.DB, scope authz.AccessScope) ([]Lead, error)
	Update(db *gorm.DB, l *Lead) error
	Delete(db *gorm.DB, id uint) error
	// CountByColumn returns grouped counts for one enum column under the
	// given scope.
	CountByColumn(db *gorm.DB, scope authz.AccessScope, column string) (map[string]int64, error)
	// Convert creates the client and freezes the lead in one transaction.
	// Both writes commit or neither does.
	Convert(db *gorm.DB, l *Lead, c *client.Client, entry *activity.Activity) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, l *Lead) error {
	return db.Create(l).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Lead, error) {
	var l Lead
	if err := db.First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repositoryImpl) List(db *gorm.DB, scope authz.AccessScope) ([]Lead, error) {
	q := db.Order("created_at DESC")
	if !scope.All {
		q = q.Where("owner_id = ?", scope.OwnerID)
	}
	var list []Lead
	err := q.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Lead{}, id).Error
}

type groupCount struct {
	Key   string
	Count int64
}

func (r *repositoryImpl) CountByColumn(db *gorm.DB, scope authz.AccessScope, column string) (map[string]int64, error) {
	q := db.Model(&Lead{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column)
	if !scope.All {
		q = q.Where("owner_id = ?", scope.OwnerID)
	}
	var rows []groupCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *repositoryImpl) Convert(db *gorm.DB, l *Lead, c *client.Client, entry *activity.Activity) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		// Guarded freeze: the is_converted predicate decides the race
		// between two concurrent conversions. The loser matches zero rows
		// and the whole transaction, client row included, rolls back.
		now := time.Now()
		res := tx.Model(&Lead{}).
			Where("id = ? AND is_converted = ?", l.ID, false).
			Updates(map[string]interface{}{
				"is_converted":        true,
				"converted_at":        now,
				"converted_client_id": c.ID,
				"status":              StatusConverted,
				"estimated_value":     l.EstimatedValue,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("lead is already converted")
		}

		l.IsConverted = true
		l.ConvertedAt = &now
		l.ConvertedClientID = &c.ID
		l.Status = StatusConverted

		entry.LeadID = &l.ID
		entry.ClientID = &c.ID
		return tx.Create(entry).Error
	})
}
