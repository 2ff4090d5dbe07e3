package document

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
)

type Repository interface {
	Save(db *gorm.DB, d *Document) error
	FindByID(db *gorm.DB, id uint) (*Document, error)
	ListByLead(db *gorm.DB, leadID uint) ([]Document, error)
	ListByClient(db *gorm.DB, clientID uint) ([]Document, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, d *Document) error {
	return db.Create(d).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Document, error) {
	var d Document
	if err := db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Document, error) {
	var list []Document
	err := db.Where("lead_id = ?", leadID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByClient(db *gorm.DB, clientID uint) ([]Document, error) {
	var list []Document
	err := db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Document{}, id).Error
}
