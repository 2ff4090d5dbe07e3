package meeting

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
)

type Repository interface {
	Save(db *gorm.DB, m *Meeting) error
	FindByID(db *gorm.DB, id uint) (*Meeting, error)
	ListByLead(db *gorm.DB, leadID uint) ([]Meeting, error)
	ListByClient(db *gorm.DB, clientID uint) ([]Meeting, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, m *Meeting) error {
	return db.Create(m).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Meeting, error) {
	var m Meeting
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Meeting, error) {
	var list []Meeting
	err := db.Where("lead_id = ?", leadID).Order("scheduled_at").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByClient(db *gorm.DB, clientID uint) ([]Meeting, error) {
	var list []Meeting
	err := db.Where("client_id = ?", clientID).Order("scheduled_at").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Meeting{}, id).Error
}
