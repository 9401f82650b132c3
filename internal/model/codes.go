package model

// 结算相关公共代码

// PayWayCode 支付方式代码
const (
	PayWayCreditCard = "001" // 信用卡
	PayWayPoint      = "002" // 积分
)

// payWayPriority 支付方式优先级（数值小的先结算，撤销时逆序）
var payWayPriority = map[string]int{
	PayWayCreditCard: 1,
	PayWayPoint:      2,
}

// PayWayPriority 获取支付方式优先级，未知方式返回较大值排在最后
func PayWayPriority(wayCode string) int {
	if p, ok := payWayPriority[wayCode]; ok {
		return p
	}
	return 99
}

// PayTypeCode 结算类型代码
const (
	PayTypePayment = "001" // 支付
	PayTypeCancel  = "002" // 取消
)

// PayStatusCode 结算状态代码
const (
	PayStatusPending   = "001" // 待处理
	PayStatusCompleted = "002" // 已完成
	PayStatusCancelled = "003" // 已取消
	PayStatusFailed    = "004" // 失败
)

// PgTypeCode PG公司代码
const (
	PgTypeInicis  = "001" // Inicis
	PgTypeNicePay = "002" // NicePay
)

// PayLogCode 支付接口日志类型代码
const (
	PayLogInitiate  = "001" // 发起
	PayLogApproval  = "002" // 承认
	PayLogNetCancel = "003" // 网络取消
	PayLogCancel    = "004" // 取消
)

// PointTxnCode 积分交易代码
const (
	PointTxnEarn = "001" // 积分累积
	PointTxnUse  = "002" // 积分使用
)

// PointReasonCode 积分交易事由代码
const (
	PointReasonEtc   = "001" // 其他
	PointReasonOrder = "002" // 订单
)

// PointValidityDays 积分有效天数
const PointValidityDays = 365

// OrderTypeCode 订单类型代码
const (
	OrderTypeOrder  = "001" // 订单
	OrderTypeCancel = "002" // 取消
)

// OrderStatusCode 订单状态代码
const (
	OrderStatusReceived  = "001" // 订单接收
	OrderStatusCancelled = "002" // 订单取消
)
