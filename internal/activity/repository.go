package activity

import "gorm.io/gorm"

type Repository interface {
	Save(db *gorm.DB, a *Activity) error
	ListByLead(db *gorm.DB, leadID uint) ([]Activity, error)
	ListByClient(db *gorm.DB, clientID uint) ([]Activity, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, a *Activity) error {
	return db.Create(a).Error
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Activity, error) {
	var list []Activity
	err := db.
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByClient(db *gorm.DB, clientID uint) ([]Activity, error) {
	var list []Activity
	err := db.
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
