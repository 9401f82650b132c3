package model

import (
	"time"
)

// PointLot 积分记录（一次累积产生一个批次，按有效期先进先出消耗）
// 使用记录通过 UpperPointHistoryNo 指向被消耗的累积批次
type PointLot struct {
	PointHistoryNo      string    `json:"point_history_no" gorm:"primaryKey;size:64"`
	MemberNo            string    `json:"member_no" gorm:"size:64;not null;index"`
	Amount              int64     `json:"amount" gorm:"not null"`
	RemainPoint         int64     `json:"remain_point" gorm:"not null"` // 剩余可用积分，仅累积记录有意义
	PointTxnCode        string    `json:"point_txn_code" gorm:"size:8;not null"`    // 001累积 002使用
	PointReasonCode     string    `json:"point_reason_code" gorm:"size:8;not null"` // 001其他 002订单
	PointReasonNo       string    `json:"point_reason_no" gorm:"size:64"`           // 关联单号（支付编号等）
	UpperPointHistoryNo string    `json:"upper_point_history_no" gorm:"size:64;index"`
	StartDateTime       time.Time `json:"start_date_time" gorm:"not null"`
	EndDateTime         time.Time `json:"end_date_time" gorm:"not null;index"`

	AuditColumns
}

// TableName 自定义表名
func (PointLot) TableName() string {
	return "point_history"
}

// Expired 是否已过期
func (l *PointLot) Expired(now time.Time) bool {
	return !now.Before(l.EndDateTime)
}

// LotUsage 一次扣减中单个批次的消耗量
type LotUsage struct {
	PointHistoryNo string `json:"point_history_no"`
	Amount         int64  `json:"amount"`
}
