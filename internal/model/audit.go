package model

import (
	"time"
)

// AuditColumns 系统公共列（登记人/登记时间/修改人/修改时间）
// 各实体以值嵌入方式复用，不做继承
type AuditColumns struct {
	RegistID       string    `json:"regist_id" gorm:"size:64"`
	RegistDateTime time.Time `json:"regist_date_time"`
	ModifyID       string    `json:"modify_id" gorm:"size:64"`
	ModifyDateTime time.Time `json:"modify_date_time"`
}

// NewAuditColumns 创建公共列
func NewAuditColumns(operator string, now time.Time) AuditColumns {
	return AuditColumns{
		RegistID:       operator,
		RegistDateTime: now,
		ModifyID:       operator,
		ModifyDateTime: now,
	}
}

// Touch 更新修改人与修改时间
func (a *AuditColumns) Touch(operator string, now time.Time) {
	a.ModifyID = operator
	a.ModifyDateTime = now
}
