package model

import (
	"time"
)

// SettlementRecord 结算记录（一条记录对应一个渠道上的一次资金流动）
// 只追加不删除，取消记录通过 UpperPayNo 指向被撤销的原支付记录
type SettlementRecord struct {
	PayNo            string     `json:"pay_no" gorm:"primaryKey;size:64"`
	OrderNo          string     `json:"order_no" gorm:"size:64;not null;index"`
	ClaimNo          string     `json:"claim_no" gorm:"size:64;index"`              // 仅取消记录填写
	UpperPayNo       string     `json:"upper_pay_no" gorm:"size:64;index"`          // 取消记录指向的原支付编号
	PayTypeCode      string     `json:"pay_type_code" gorm:"size:8;not null"`       // 001支付 002取消
	PayWayCode       string     `json:"pay_way_code" gorm:"size:8;not null"`        // 001信用卡 002积分
	PayStatusCode    string     `json:"pay_status_code" gorm:"size:8;not null"`     // 001待处理 002完成 003取消 004失败
	PgTypeCode       string     `json:"pg_type_code" gorm:"size:8"`                 // 仅卡渠道填写
	ApproveNo        string     `json:"approve_no" gorm:"size:64"`                  // PG承认号
	TrdNo            string     `json:"trd_no" gorm:"size:64"`                      // 外部交易号
	MemberNo         string     `json:"member_no" gorm:"size:64;not null;index"`
	Amount           int64      `json:"amount" gorm:"not null"`
	CancelableAmount int64      `json:"cancelable_amount" gorm:"not null"` // 剩余可取消金额，仅支付记录有意义
	PayFinishDtm     *time.Time `json:"pay_finish_dtm"`

	AuditColumns
}

// TableName 自定义表名
func (SettlementRecord) TableName() string {
	return "settlement_record"
}

// IsPayment 是否支付类型记录
func (r *SettlementRecord) IsPayment() bool {
	return r.PayTypeCode == PayTypePayment
}

// IsCompleted 是否已完成
func (r *SettlementRecord) IsCompleted() bool {
	return r.PayStatusCode == PayStatusCompleted
}
