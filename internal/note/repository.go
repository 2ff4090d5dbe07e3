package note

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
)

type Repository interface {
	Save(db *gorm.DB, n *Note) error
	FindByID(db *gorm.DB, id uint) (*Note, error)
	ListByLead(db *gorm.DB, leadID uint) ([]Note, error)
	ListByClient(db *gorm.DB, clientID uint) ([]Note, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, n *Note) error {
	return db.Create(n).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Note, error) {
	var n Note
	if err := db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Note, error) {
	var list []Note
	err := db.Where("lead_id = ?", leadID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByClient(db *gorm.DB, clientID uint) ([]Note, error) {
	var list []Note
	err := db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Note{}, id).Error
}
