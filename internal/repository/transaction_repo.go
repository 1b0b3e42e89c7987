package repository

import (
	"time"

	"go-timeclock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRepository stores sales. Range queries match occurred_at in
// [start, end) ordered by occurred_at.
type TransactionRepository interface {
	Create(tx *model.SalesTransaction) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.SalesTransaction, error)
	FindByRange(start, end time.Time) ([]model.SalesTransaction, error)
	FindBySession(sessionID uuid.UUID) ([]model.SalesTransaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *model.SalesTransaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Model(&model.SalesTransaction{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	}).Error
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.SalesTransaction, error) {
	var tx model.SalesTransaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepo) FindByRange(start, end time.Time) ([]model.SalesTransaction, error) {
	var txs []model.SalesTransaction
	err := r.db.Where("occurred_at >= ? AND occurred_at < ?", start, end).
		Order("occurred_at ASC").
		Find(&txs).Error
	return txs, err
}

// FindBySession returns the sales linked to one register session.
func (r *transactionRepo) FindBySession(sessionID uuid.UUID) ([]model.SalesTransaction, error) {
	var txs []model.SalesTransaction
	err := r.db.Where("register_session_id = ?", sessionID).
		Order("occurred_at ASC").
		Find(&txs).Error
	return txs, err
}
