package rail

import (
	"context"
	"errors"
)

// 渠道层错误
var (
	// ErrUnavailable 渠道暂时不可用（网络错误/超时/5xx），可在确认未重复后重试
	ErrUnavailable = errors.New("rail unavailable")
	// ErrRejected 渠道业务拒绝（卡被拒等），终态，不可重试
	ErrRejected = errors.New("rail rejected")
	// ErrUnsupportedPayWay 未注册的支付方式
	ErrUnsupportedPayWay = errors.New("unsupported pay way")
)

// BuyerInfo 买家信息
type BuyerInfo struct {
	Name  string `json:"name"`
	Tel   string `json:"tel"`
	Email string `json:"email"`
}

// InitiateRequest 结算发起请求（卡渠道生成PG窗口参数，积分渠道仅做可行性检查）
type InitiateRequest struct {
	OrderNo   string    `json:"order_no"`
	MemberNo  string    `json:"member_no"`
	Amount    int64     `json:"amount"`
	GoodsName string    `json:"goods_name"`
	Buyer     BuyerInfo `json:"buyer"`
}

// InitiateResponse 结算发起响应
type InitiateResponse struct {
	PayWayCode string            `json:"pay_way_code"`
	PgTypeCode string            `json:"pg_type_code,omitempty"`
	FormData   map[string]string `json:"form_data,omitempty"`
}

// SettleRequest 结算请求（实际资金流动）
type SettleRequest struct {
	PayNo      string    `json:"pay_no"` // 预先生成的结算编号，用于幂等
	OrderNo    string    `json:"order_no"`
	MemberNo   string    `json:"member_no"`
	Amount     int64     `json:"amount"`
	PgTypeCode string    `json:"pg_type_code,omitempty"` // 卡渠道：PG公司
	AuthToken  string    `json:"auth_token,omitempty"`   // 卡渠道：PG认证令牌
	Buyer      BuyerInfo `json:"buyer"`
}

// SettleResult 结算结果
type SettleResult struct {
	ApproveNo string `json:"approve_no,omitempty"`
	TrdNo     string `json:"trd_no"` // 外部交易号，撤销时使用
}

// ReverseRequest 撤销请求（部分或全额）
type ReverseRequest struct {
	PayNo      string `json:"pay_no"` // 新生成的取消结算编号
	OrderNo    string `json:"order_no"`
	MemberNo   string `json:"member_no"`
	TrdNo      string `json:"trd_no"` // 原结算的外部交易号
	PgTypeCode string `json:"pg_type_code,omitempty"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
}

// ReverseResult 撤销结果
type ReverseResult struct {
	CancelTrdNo string `json:"cancel_trd_no,omitempty"`
}

// Adapter 统一结算渠道契约（卡PG、积分账本各实现一份）
type Adapter interface {
	// WayCode 渠道对应的支付方式代码
	WayCode() string
	// Initiate 结算前准备，不发生资金流动
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	// Settle 执行资金流动，同一结算编号至多调用一次
	Settle(ctx context.Context, req SettleRequest) (*SettleResult, error)
	// Reverse 撤销此前的结算
	Reverse(ctx context.Context, req ReverseRequest) (*ReverseResult, error)
	// NetCancel 网络取消：本地订单事务已确定失败时撤销结算
	NetCancel(ctx context.Context, req ReverseRequest) (*ReverseResult, error)
}
