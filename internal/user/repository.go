package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vantagecrm/api/internal/apperr"
)

type Repository interface {
	Save(db *gorm.DB, u *User) error
	FindByID(db *gorm.DB, id uint) (*User, error)
	FindByUsername(db *gorm.DB, username string) (*User, error)
	List(db *gorm.DB) ([]User, error)
	Update(db *gorm.DB, u *User) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, u *User) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*User, error) {
	var u User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) FindByUsername(db *gorm.DB, username string) (*User, error) {
	var u User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) List(db *gorm.DB) ([]User, error) {
	var list []User
	err := db.Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Update(db *gorm.DB, u *User) error {
	return db.Save(u).Error
}
