package repository

import (
	"go-timeclock/internal/model"

	"gorm.io/gorm"
)

type RegisterRepository interface {
	Create(s *model.RegisterSession) error
	Update(s *model.RegisterSession) error
	FindOpen() (*model.RegisterSession, error)
}

type registerRepo struct {
	db *gorm.DB
}

func NewRegisterRepo(db *gorm.DB) RegisterRepository {
	return &registerRepo{db}
}

func (r *registerRepo) Create(s *model.RegisterSession) error {
	return r.db.Create(s).Error
}

func (r *registerRepo) Update(s *model.RegisterSession) error {
	return r.db.Save(s).Error
}

func (r *registerRepo) FindOpen() (*model.RegisterSession, error) {
	var s model.RegisterSession
	if err := r.db.Where("closed_at IS NULL").Order("opened_at DESC").First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
