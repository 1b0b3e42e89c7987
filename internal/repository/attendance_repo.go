package repository

import (
	"time"

	"go-timeclock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceRepository is the range-filtered store behind the hours engine.
// Range queries match clock_in in [start, end) and are ordered by clock_in.
type AttendanceRepository interface {
	Create(a *model.Attendance) error
	Update(a *model.Attendance) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Attendance, error)
	FindOpenByUser(email string) (*model.Attendance, error)
	FindByRange(start, end time.Time) ([]model.Attendance, error)
	FindByUserAndRange(email string, start, end time.Time) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db}
}

func (r *attendanceRepo) Create(a *model.Attendance) error {
	return r.db.Create(a).Error
}

func (r *attendanceRepo) Update(a *model.Attendance) error {
	return r.db.Omit("User").Save(a).Error
}

func (r *attendanceRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Model(&model.Attendance{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	}).Error
}

func (r *attendanceRepo) FindByID(id uuid.UUID) (*model.Attendance, error) {
	var a model.Attendance
	if err := r.db.Preload("User").First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOpenByUser returns the latest attendance without a clock-out.
func (r *attendanceRepo) FindOpenByUser(email string) (*model.Attendance, error) {
	var a model.Attendance
	if err := r.db.Where("user_email = ? AND clock_out IS NULL", email).
		Order("clock_in DESC").
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) FindByRange(start, end time.Time) ([]model.Attendance, error) {
	var rows []model.Attendance
	if err := r.db.Preload("User").
		Where("clock_in >= ? AND clock_in < ?", start, end).
		Order("clock_in ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attendanceRepo) FindByUserAndRange(email string, start, end time.Time) ([]model.Attendance, error) {
	var rows []model.Attendance
	if err := r.db.Preload("User").
		Where("user_email = ?", email).
		Where("clock_in >= ? AND clock_in < ?", start, end).
		Order("clock_in ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
