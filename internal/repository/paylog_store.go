package repository

import (
	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"gorm.io/gorm"
)

// PayLogStore 支付接口日志存取的gorm实现
type PayLogStore struct {
	db *gorm.DB
}

func NewPayLogStore(db *gorm.DB) *PayLogStore {
	return &PayLogStore{db: db}
}

func (s *PayLogStore) Insert(l *model.PayInterfaceLog) error {
	return s.db.Create(l).Error
}

func (s *PayLogStore) ListByPayNo(payNo string) ([]model.PayInterfaceLog, error) {
	var logs []model.PayInterfaceLog
	err := s.db.Where("pay_no = ?", payNo).
		Order("regist_date_time ASC").
		Find(&logs).Error
	return logs, err
}
