package model

import (
	"time"
)

// OrderChainRow 订单处理链记录
// 同一 (订单号, 序号) 下 ProcessSequence 严格递增构成线性链，
// 原始订单为 1，每次索赔追加一行并以 UpperProcessSequence 指向被撤销的行
type OrderChainRow struct {
	OrderNo              string `json:"order_no" gorm:"primaryKey;size:64"`
	OrderSequence        int64  `json:"order_sequence" gorm:"primaryKey"`
	ProcessSequence      int64  `json:"process_sequence" gorm:"primaryKey"`
	UpperProcessSequence int64  `json:"upper_process_sequence"`
	ClaimNo              string `json:"claim_no" gorm:"size:64;index"` // 仅索赔行填写
	MemberNo             string `json:"member_no" gorm:"size:64;not null;index"`
	GoodsNo              string `json:"goods_no" gorm:"size:64;not null"`
	ItemNo               string `json:"item_no" gorm:"size:64;not null"`
	GoodsName            string `json:"goods_name" gorm:"size:256"`
	Quantity             int64  `json:"quantity" gorm:"not null"`
	SalePrice            int64  `json:"sale_price" gorm:"not null"`
	OrderTypeCode        string `json:"order_type_code" gorm:"size:8;not null"`   // 001订单 002取消
	OrderStatusCode      string `json:"order_status_code" gorm:"size:8;not null"` // 001接收 002取消
	OrderAcceptDtm       time.Time `json:"order_accept_dtm"`

	AuditColumns
}

// TableName 自定义表名
func (OrderChainRow) TableName() string {
	return "order_detail"
}

// LineAmount 行金额 = 单价 × 数量
func (r *OrderChainRow) LineAmount() int64 {
	return r.SalePrice * r.Quantity
}
