package task

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
)

type Repository interface {
	Save(db *gorm.DB, t *Task) error
	FindByID(db *gorm.DB, id uint) (*Task, error)
	ListByLead(db *gorm.DB, leadID uint) ([]Task, error)
	ListByClient(db *gorm.DB, clientID uint) ([]Task, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, t *Task) error {
	return db.Create(t).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Task, error) {
	var t Task
	if err := db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Task, error) {
	var list []Task
	err := db.Where("lead_id = ?", leadID).Order("due_at").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByClient(db *gorm.DB, clientID uint) ([]Task, error) {
	var list []Task
	err := db.Where("client_id = ?", clientID).Order("due_at").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Task{}, id).Error
}
