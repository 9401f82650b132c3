package repository

import (
	"errors"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"gorm.io/gorm"
)

// PointLotStore 积分批次存取的gorm实现
type PointLotStore struct {
	db *gorm.DB
}

func NewPointLotStore(db *gorm.DB) *PointLotStore {
	return &PointLotStore{db: db}
}

func (s *PointLotStore) Insert(lot *model.PointLot) error {
	return s.db.Create(lot).Error
}

func (s *PointLotStore) Get(pointHistoryNo string) (*model.PointLot, error) {
	var lot model.PointLot
	err := s.db.Where("point_history_no = ?", pointHistoryNo).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// ListAvailable 未过期且有剩余的累积批次，先到期的先消耗
// 到期时刻本身视为已过期，与 PointLot.Expired 口径一致
func (s *PointLotStore) ListAvailable(memberNo string, now time.Time) ([]model.PointLot, error) {
	var lots []model.PointLot
	err := s.db.Where("member_no = ? AND point_txn_code = ? AND remain_point > 0 AND start_date_time <= ? AND end_date_time > ?",
		memberNo, model.PointTxnEarn, now, now).
		Order("end_date_time ASC, regist_date_time ASC").
		Find(&lots).Error
	return lots, err
}

// UpdateRemain 条件更新实现CAS：仅当剩余积分仍为期望值时更新
func (s *PointLotStore) UpdateRemain(pointHistoryNo string, expect, newRemain int64, operator string) error {
	result := s.db.Model(&model.PointLot{}).
		Where("point_history_no = ? AND remain_point = ?", pointHistoryNo, expect).
		Updates(map[string]interface{}{
			"remain_point":     newRemain,
			"modify_id":        operator,
			"modify_date_time": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCASConflict
	}
	return nil
}

func (s *PointLotStore) ListByMember(memberNo string, page, pageSize int) ([]model.PointLot, int64, error) {
	var lots []model.PointLot
	var total int64

	query := s.db.Model(&model.PointLot{}).Where("member_no = ?", memberNo)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("regist_date_time DESC").
		Offset(offset).Limit(pageSize).
		Find(&lots).Error
	return lots, total, err
}
