package model

// PayInterfaceLog 支付接口日志（渠道请求/响应原文，按结算编号追加）
type PayInterfaceLog struct {
	PayInterfaceNo string `json:"pay_interface_no" gorm:"primaryKey;size:64"`
	PayNo          string `json:"pay_no" gorm:"size:64;not null;index"`
	MemberNo       string `json:"member_no" gorm:"size:64"`
	PayLogCode     string `json:"pay_log_code" gorm:"size:8;not null"` // 001发起 002承认 003网络取消 004取消
	RequestJSON    string `json:"request_json" gorm:"type:text"`
	ResponseJSON   string `json:"response_json" gorm:"type:text"`

	AuditColumns
}

// TableName 自定义表名
func (PayInterfaceLog) TableName() string {
	return "pay_interface_log"
}
