package logic

import (
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// 持久化网关：logic 层只依赖以下窄接口，gorm 实现位于 repository 包
// 带 expect 参数的更新为乐观CAS，预期值不匹配时返回 model.ErrCASConflict

// SettlementStore 结算记录存取
type SettlementStore interface {
	Insert(rec *model.SettlementRecord) error
	Get(payNo string) (*model.SettlementRecord, error)
	// UpdateStatus 更新结算状态与外部交易信息
	UpdateStatus(payNo, statusCode, approveNo, trdNo string, finishedAt *time.Time, operator string) error
	// DecrementCancelable 按CAS扣减可取消金额（expect 为读取时的当前值）
	DecrementCancelable(payNo string, expect, amount int64, operator string) error
	ListByOrder(orderNo string) ([]model.SettlementRecord, error)
}

// PointLotStore 积分批次存取
type PointLotStore interface {
	Insert(lot *model.PointLot) error
	Get(pointHistoryNo string) (*model.PointLot, error)
	// ListAvailable 查询未过期且有剩余的累积批次，按有效期升序、登记时间升序
	ListAvailable(memberNo string, now time.Time) ([]model.PointLot, error)
	// UpdateRemain 按CAS更新批次剩余积分
	UpdateRemain(pointHistoryNo string, expect, newRemain int64, operator string) error
	// ListByMember 分页查询会员全部积分记录
	ListByMember(memberNo string, page, pageSize int) ([]model.PointLot, int64, error)
}

// ChainStore 订单处理链存取
type ChainStore interface {
	Insert(row *model.OrderChainRow) error
	GetByKey(orderNo string, orderSequence, processSequence int64) (*model.OrderChainRow, error)
	// LatestProcessSequence 查询 (订单号, 序号) 链上最大的处理序号
	LatestProcessSequence(orderNo string, orderSequence int64) (int64, error)
	ListByOrder(orderNo string) ([]model.OrderChainRow, error)
	// ListByMember 分页查询会员订单行，按登记时间倒序
	ListByMember(memberNo string, page, pageSize int) ([]model.OrderChainRow, int64, error)
}

// PayLogStore 支付接口日志存取
type PayLogStore interface {
	Insert(l *model.PayInterfaceLog) error
	ListByPayNo(payNo string) ([]model.PayInterfaceLog, error)
}
