package repository

import (
	"errors"

	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"gorm.io/gorm"
)

// ChainStore 订单处理链存取的gorm实现
type ChainStore struct {
	db *gorm.DB
}

func NewChainStore(db *gorm.DB) *ChainStore {
	return &ChainStore{db: db}
}

func (s *ChainStore) Insert(row *model.OrderChainRow) error {
	return s.db.Create(row).Error
}

func (s *ChainStore) GetByKey(orderNo string, orderSequence, processSequence int64) (*model.OrderChainRow, error) {
	var row model.OrderChainRow
	err := s.db.Where("order_no = ? AND order_sequence = ? AND process_sequence = ?",
		orderNo, orderSequence, processSequence).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *ChainStore) LatestProcessSequence(orderNo string, orderSequence int64) (int64, error) {
	var latest int64
	err := s.db.Model(&model.OrderChainRow{}).
		Where("order_no = ? AND order_sequence = ?", orderNo, orderSequence).
		Select("COALESCE(MAX(process_sequence), 0)").
		Scan(&latest).Error
	return latest, err
}

func (s *ChainStore) ListByOrder(orderNo string) ([]model.OrderChainRow, error) {
	var rows []model.OrderChainRow
	err := s.db.Where("order_no = ?", orderNo).
		Order("order_sequence ASC, process_sequence ASC").
		Find(&rows).Error
	return rows, err
}

func (s *ChainStore) ListByMember(memberNo string, page, pageSize int) ([]model.OrderChainRow, int64, error) {
	var total int64
	query := s.db.Model(&model.OrderChainRow{}).Where("member_no = ?", memberNo)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.OrderChainRow
	err := query.Order("regist_date_time DESC, order_no ASC, order_sequence ASC, process_sequence ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}
