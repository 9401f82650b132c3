package repository

import (
	"errors"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"gorm.io/gorm"
)

// SettlementStore 结算记录存取的gorm实现
type SettlementStore struct {
	db *gorm.DB
}

func NewSettlementStore(db *gorm.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

func (s *SettlementStore) Insert(rec *model.SettlementRecord) error {
	return s.db.Create(rec).Error
}

func (s *SettlementStore) Get(payNo string) (*model.SettlementRecord, error) {
	var rec model.SettlementRecord
	err := s.db.Where("pay_no = ?", payNo).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *SettlementStore) UpdateStatus(payNo, statusCode, approveNo, trdNo string, finishedAt *time.Time, operator string) error {
	updates := map[string]interface{}{
		"pay_status_code":  statusCode,
		"approve_no":       approveNo,
		"trd_no":           trdNo,
		"pay_finish_dtm":   finishedAt,
		"modify_id":        operator,
		"modify_date_time": time.Now(),
	}
	result := s.db.Model(&model.SettlementRecord{}).
		Where("pay_no = ?", payNo).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DecrementCancelable 条件更新实现CAS：仅当可取消金额仍为期望值时扣减
func (s *SettlementStore) DecrementCancelable(payNo string, expect, amount int64, operator string) error {
	result := s.db.Model(&model.SettlementRecord{}).
		Where("pay_no = ? AND cancelable_amount = ?", payNo, expect).
		Updates(map[string]interface{}{
			"cancelable_amount": expect - amount,
			"modify_id":         operator,
			"modify_date_time":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCASConflict
	}
	return nil
}

func (s *SettlementStore) ListByOrder(orderNo string) ([]model.SettlementRecord, error) {
	var records []model.SettlementRecord
	err := s.db.Where("order_no = ?", orderNo).
		Order("regist_date_time ASC").
		Find(&records).Error
	return records, err
}
