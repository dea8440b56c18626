package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coursepay/internal/model"
)

type TransactionStats struct {
	Total        int64           `json:"total"`
	Pending      int64           `json:"pending"`
	Completed    int64           `json:"completed"`
	Failed       int64           `json:"failed"`
	Refunded     int64           `json:"refunded"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []*model.TransactionItem) error
	FindByID(ctx context.Context, id uint) (*model.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*model.Transaction, error)
	FindByGatewaySession(ctx context.Context, sessionID string) (*model.Transaction, error)
	GetItems(ctx context.Context, tx *gorm.DB, transactionID uint) ([]*model.TransactionItem, error)
	List(ctx context.Context, status string, page, limit int) ([]*model.Transaction, int64, error)
	ListAll(ctx context.Context) ([]*model.Transaction, error)
	Stats(ctx context.Context) (*TransactionStats, error)
	// UpdateStatus moves status from one value to another; the guard makes a
	// lost race or a replayed confirmation surface as ErrRecordNotFound
	// instead of silently overwriting a terminal state.
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to string) error
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{
		db: db,
	}
}

func (r *transactionRepoImpl) Create(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error {
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepoImpl) CreateItems(ctx context.Context, tx *gorm.DB, items []*model.TransactionItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *transactionRepoImpl) FindByID(ctx context.Context, id uint) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&txn).Error

	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepoImpl) FindByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&txn).Error

	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepoImpl) FindByGatewaySession(ctx context.Context, sessionID string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("gateway_session_id = ?", sessionID).
		First(&txn).Error

	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepoImpl) GetItems(ctx context.Context, tx *gorm.DB, transactionID uint) ([]*model.TransactionItem, error) {
	var items []*model.TransactionItem
	err := tx.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *transactionRepoImpl) List(ctx context.Context, status string, page, limit int) ([]*model.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Transaction{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []*model.Transaction
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

func (r *transactionRepoImpl) ListAll(ctx context.Context) ([]*model.Transaction, error) {
	var txns []*model.Transaction
	err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&txns).Error

	if err != nil {
		return nil, err
	}

	return txns, nil
}

func (r *transactionRepoImpl) Stats(ctx context.Context) (*TransactionStats, error) {
	stats := &TransactionStats{TotalRevenue: decimal.Zero}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case "PENDING":
			stats.Pending = c.Count
		case "COMPLETED":
			stats.Completed = c.Count
		case "FAILED":
			stats.Failed = c.Count
		case "REFUNDED":
			stats.Refunded = c.Count
		}
	}

	var revenue decimal.NullDecimal
	err = r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("status = ?", "COMPLETED").
		Select("sum(amount)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}

	return stats, nil
}

func (r *transactionRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, from, to string) error {
	result := tx.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
