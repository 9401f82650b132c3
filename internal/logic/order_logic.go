package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"github.com/phj1120/vibe-pay-sub000/internal/rail"
)

var (
	// ErrInvalidOrder 订单校验失败（金额不符、商品为空等），外部调用发生前拒绝
	ErrInvalidOrder = errors.New("invalid order request")
)

// PayRequest 单个支付方式的结算请求
type PayRequest struct {
	PayWayCode string `json:"pay_way_code"`
	Amount     int64  `json:"amount"`
	PgTypeCode string `json:"pg_type_code,omitempty"` // 卡渠道：发起时选定的PG公司
	AuthToken  string `json:"auth_token,omitempty"`   // 卡渠道：PG认证令牌
}

// OrderGoodsRequest 订单商品行
type OrderGoodsRequest struct {
	GoodsNo   string `json:"goods_no"`
	ItemNo    string `json:"item_no"`
	GoodsName string `json:"goods_name"`
	Quantity  int64  `json:"quantity"`
	SalePrice int64  `json:"sale_price"`
}

// CreateOrderRequest 订单创建请求
type CreateOrderRequest struct {
	OrderNo  string              `json:"order_no"`
	MemberNo string              `json:"member_no"`
	Goods    []OrderGoodsRequest `json:"goods"`
	Payments []PayRequest        `json:"payments"`
	Buyer    rail.BuyerInfo      `json:"buyer"`
}

// SettlementFailedError 结算失败
// 记录失败的支付方式、阶段以及对已完成渠道的补偿是否全部成功
type SettlementFailedError struct {
	Stage                string // settle: 渠道结算失败; persist: 订单落库失败
	PayWayCode           string
	Index                int
	CompensationComplete bool
	Err                  error
}

func (e *SettlementFailedError) Error() string {
	return fmt.Sprintf("settlement failed at %s (wayCode=%s, index=%d, compensationComplete=%t): %v",
		e.Stage, e.PayWayCode, e.Index, e.CompensationComplete, e.Err)
}

func (e *SettlementFailedError) Unwrap() error {
	return e.Err
}

// OrderLogic 订单结算编排
// 按优先级逐渠道结算，任一渠道失败时对已完成渠道做逆序网络取消补偿
type OrderLogic struct {
	settlements SettlementStore
	chain       ChainStore
	registry    *rail.Registry
	paylog      *PayLogLogic
	now         func() time.Time
}

// NewOrderLogic 创建订单结算编排逻辑
func NewOrderLogic(settlements SettlementStore, chain ChainStore, registry *rail.Registry, paylog *PayLogLogic) *OrderLogic {
	return &OrderLogic{
		settlements: settlements,
		chain:       chain,
		registry:    registry,
		paylog:      paylog,
		now:         time.Now,
	}
}

// CreateOrder 创建订单：校验 → 逐渠道结算 → 订单落库
// 订单落库失败时对本订单全部结算记录做逆序网络取消
func (l *OrderLogic) CreateOrder(ctx context.Context, req CreateOrderRequest) error {
	logger.Info("Order creation started. memberNo=%s, orderNo=%s, goodsCount=%d",
		req.MemberNo, req.OrderNo, len(req.Goods))

	if err := l.validateOrder(req); err != nil {
		return err
	}

	completed, err := l.processPayments(ctx, req)
	if err != nil {
		return err
	}

	if err := l.createOrderRows(req); err != nil {
		logger.Error("Order persistence failed. Rolling back payments. orderNo=%s: %v", req.OrderNo, err)
		ok := l.netCancelSweep(ctx, req, completed)
		return &SettlementFailedError{
			Stage:                "persist",
			Index:                -1,
			CompensationComplete: ok,
			Err:                  err,
		}
	}

	logger.Info("Order creation completed successfully. orderNo=%s", req.OrderNo)
	return nil
}

// validateOrder 订单校验，任何外部调用发生前执行
func (l *OrderLogic) validateOrder(req CreateOrderRequest) error {
	if req.OrderNo == "" || req.MemberNo == "" {
		return fmt.Errorf("%w: order no and member no are required", ErrInvalidOrder)
	}
	if len(req.Goods) == 0 {
		return fmt.Errorf("%w: goods list is empty", ErrInvalidOrder)
	}
	if len(req.Payments) == 0 {
		return fmt.Errorf("%w: payment list is empty", ErrInvalidOrder)
	}

	var goodsTotal int64
	for _, g := range req.Goods {
		if g.Quantity <= 0 || g.SalePrice < 0 {
			return fmt.Errorf("%w: invalid goods line %s-%s", ErrInvalidOrder, g.GoodsNo, g.ItemNo)
		}
		goodsTotal += g.SalePrice * g.Quantity
	}

	var payTotal int64
	for _, p := range req.Payments {
		if p.Amount <= 0 {
			return fmt.Errorf("%w: pay amount must be positive (wayCode=%s)", ErrInvalidOrder, p.PayWayCode)
		}
		payTotal += p.Amount
	}

	if goodsTotal != payTotal {
		return fmt.Errorf("%w: goods total %d != pay total %d", ErrInvalidOrder, goodsTotal, payTotal)
	}
	return nil
}

// processPayments 按优先级顺序逐渠道结算
// 重试同一订单时跳过已完成的支付方式，不重复扣款
func (l *OrderLogic) processPayments(ctx context.Context, req CreateOrderRequest) ([]model.SettlementRecord, error) {
	sorted := make([]PayRequest, len(req.Payments))
	copy(sorted, req.Payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.PayWayPriority(sorted[i].PayWayCode) < model.PayWayPriority(sorted[j].PayWayCode)
	})

	// 幂等：已完成的支付记录按支付方式索引
	existing, err := l.settlements.ListByOrder(req.OrderNo)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	settledByWay := make(map[string]model.SettlementRecord)
	completed := make([]model.SettlementRecord, 0, len(sorted))
	for _, rec := range existing {
		if rec.IsPayment() && rec.IsCompleted() {
			settledByWay[rec.PayWayCode] = rec
			completed = append(completed, rec)
		}
	}

	for i, p := range sorted {
		if rec, ok := settledByWay[p.PayWayCode]; ok {
			logger.Info("Payment already settled, skipping. orderNo=%s, wayCode=%s, payNo=%s",
				req.OrderNo, p.PayWayCode, rec.PayNo)
			continue
		}

		rec, err := l.settleOne(ctx, req, p)
		if err != nil {
			logger.Error("Payment failed. orderNo=%s, wayCode=%s: %v", req.OrderNo, p.PayWayCode, err)
			ok := l.netCancelSweep(ctx, req, completed)
			return nil, &SettlementFailedError{
				Stage:                "settle",
				PayWayCode:           p.PayWayCode,
				Index:                i,
				CompensationComplete: ok,
				Err:                  err,
			}
		}

		completed = append(completed, *rec)
		logger.Info("Payment processed successfully. orderNo=%s, wayCode=%s, payNo=%s, amount=%d",
			req.OrderNo, p.PayWayCode, rec.PayNo, p.Amount)
	}

	return completed, nil
}

// settleOne 单渠道结算：先落PENDING记录再调渠道，结果回写状态
func (l *OrderLogic) settleOne(ctx context.Context, req CreateOrderRequest, p PayRequest) (*model.SettlementRecord, error) {
	adapter, err := l.registry.Resolve(p.PayWayCode)
	if err != nil {
		return nil, err
	}

	now := l.now()
	payNo := newNumber("PAY")
	rec := &model.SettlementRecord{
		PayNo:            payNo,
		OrderNo:          req.OrderNo,
		PayTypeCode:      model.PayTypePayment,
		PayWayCode:       p.PayWayCode,
		PayStatusCode:    model.PayStatusPending,
		PgTypeCode:       p.PgTypeCode,
		MemberNo:         req.MemberNo,
		Amount:           p.Amount,
		CancelableAmount: p.Amount,
		AuditColumns:     model.NewAuditColumns(req.MemberNo, now),
	}
	if err := l.settlements.Insert(rec); err != nil {
		return nil, fmt.Errorf("insert settlement record: %w", err)
	}

	sreq := rail.SettleRequest{
		PayNo:      payNo,
		OrderNo:    req.OrderNo,
		MemberNo:   req.MemberNo,
		Amount:     p.Amount,
		PgTypeCode: p.PgTypeCode,
		AuthToken:  p.AuthToken,
		Buyer:      req.Buyer,
	}
	result, err := adapter.Settle(ctx, sreq)
	l.paylog.Record(payNo, req.MemberNo, model.PayLogApproval, sreq, result, err)

	finish := l.now()
	if err != nil {
		if updErr := l.settlements.UpdateStatus(payNo, model.PayStatusFailed, "", "", nil, req.MemberNo); updErr != nil {
			logger.Error("Failed to mark settlement failed. payNo=%s: %v", payNo, updErr)
		}
		return nil, err
	}

	if err := l.settlements.UpdateStatus(payNo, model.PayStatusCompleted, result.ApproveNo, result.TrdNo, &finish, req.MemberNo); err != nil {
		logger.Error("Failed to mark settlement completed. payNo=%s: %v", payNo, err)
	}

	rec.PayStatusCode = model.PayStatusCompleted
	rec.ApproveNo = result.ApproveNo
	rec.TrdNo = result.TrdNo
	rec.PayFinishDtm = &finish
	return rec, nil
}

// netCancelSweep 对已完成的结算按完成顺序的逆序做网络取消
// 单个补偿失败只记录不中断，返回是否全部补偿成功
func (l *OrderLogic) netCancelSweep(ctx context.Context, req CreateOrderRequest, completed []model.SettlementRecord) bool {
	allOK := true

	for i := len(completed) - 1; i >= 0; i-- {
		rec := completed[i]

		if err := l.netCancelOne(ctx, req, rec); err != nil {
			// 补偿失败是需要人工对账的高优先级事件
			logger.Error("Network cancellation failed, manual reconciliation required. payNo=%s, wayCode=%s: %v",
				rec.PayNo, rec.PayWayCode, err)
			allOK = false
			continue
		}
		logger.Warn("Network cancellation completed. payNo=%s, wayCode=%s, amount=%d",
			rec.PayNo, rec.PayWayCode, rec.Amount)
	}

	return allOK
}

func (l *OrderLogic) netCancelOne(ctx context.Context, req CreateOrderRequest, rec model.SettlementRecord) error {
	adapter, err := l.registry.Resolve(rec.PayWayCode)
	if err != nil {
		return err
	}

	cancelPayNo := newNumber("PAY")
	rreq := rail.ReverseRequest{
		PayNo:      cancelPayNo,
		OrderNo:    rec.OrderNo,
		MemberNo:   rec.MemberNo,
		TrdNo:      rec.TrdNo,
		PgTypeCode: rec.PgTypeCode,
		Amount:     rec.Amount,
		Reason:     "network cancel",
	}
	result, err := adapter.NetCancel(ctx, rreq)
	l.paylog.Record(cancelPayNo, rec.MemberNo, model.PayLogNetCancel, rreq, result, err)
	if err != nil {
		return err
	}

	now := l.now()

	// 原记录标记为已取消，剩余可取消金额清零
	if err := l.settlements.UpdateStatus(rec.PayNo, model.PayStatusCancelled, rec.ApproveNo, rec.TrdNo, rec.PayFinishDtm, rec.MemberNo); err != nil {
		logger.Error("Failed to mark settlement cancelled. payNo=%s: %v", rec.PayNo, err)
	}
	if err := l.settlements.DecrementCancelable(rec.PayNo, rec.CancelableAmount, rec.CancelableAmount, rec.MemberNo); err != nil {
		logger.Error("Failed to zero cancelable amount. payNo=%s: %v", rec.PayNo, err)
	}

	cancelRec := &model.SettlementRecord{
		PayNo:            cancelPayNo,
		OrderNo:          rec.OrderNo,
		UpperPayNo:       rec.PayNo,
		PayTypeCode:      model.PayTypeCancel,
		PayWayCode:       rec.PayWayCode,
		PayStatusCode:    model.PayStatusCancelled,
		PgTypeCode:       rec.PgTypeCode,
		TrdNo:            rec.TrdNo,
		MemberNo:         rec.MemberNo,
		Amount:           rec.Amount,
		CancelableAmount: 0,
		PayFinishDtm:     &now,
		AuditColumns:     model.NewAuditColumns(rec.MemberNo, now),
	}
	if err := l.settlements.Insert(cancelRec); err != nil {
		logger.Error("Failed to insert net-cancel record. payNo=%s: %v", cancelPayNo, err)
	}

	return nil
}

// createOrderRows 订单处理链落库，原始订单处理序号为1
// 重试已落库完成的订单时直接视为成功，重复写入会撞主键并误触发补偿
func (l *OrderLogic) createOrderRows(req CreateOrderRequest) error {
	if _, err := l.chain.GetByKey(req.OrderNo, 1, 1); err == nil {
		logger.Info("Order rows already persisted, skipping. orderNo=%s", req.OrderNo)
		return nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("check order rows: %w", err)
	}

	now := l.now()

	for i, g := range req.Goods {
		row := &model.OrderChainRow{
			OrderNo:         req.OrderNo,
			OrderSequence:   int64(i + 1),
			ProcessSequence: 1,
			MemberNo:        req.MemberNo,
			GoodsNo:         g.GoodsNo,
			ItemNo:          g.ItemNo,
			GoodsName:       g.GoodsName,
			Quantity:        g.Quantity,
			SalePrice:       g.SalePrice,
			OrderTypeCode:   model.OrderTypeOrder,
			OrderStatusCode: model.OrderStatusReceived,
			OrderAcceptDtm:  now,
			AuditColumns:    model.NewAuditColumns(req.MemberNo, now),
		}
		if err := l.chain.Insert(row); err != nil {
			return fmt.Errorf("insert order row %d: %w", i+1, err)
		}
	}
	return nil
}

// InitiatePayment 结算发起：卡渠道生成PG支付窗口参数，积分渠道做余额可行性检查
// 不发生资金流动
func (l *OrderLogic) InitiatePayment(ctx context.Context, payWayCode string, req rail.InitiateRequest) (*rail.InitiateResponse, error) {
	adapter, err := l.registry.Resolve(payWayCode)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: initiate amount must be positive", ErrInvalidOrder)
	}

	resp, err := adapter.Initiate(ctx, req)
	l.paylog.Record("", req.MemberNo, model.PayLogInitiate, req, resp, err)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment initiation prepared. orderNo=%s, wayCode=%s, amount=%d",
		req.OrderNo, payWayCode, req.Amount)
	return resp, nil
}

// GetOrder 查询订单处理链
func (l *OrderLogic) GetOrder(orderNo string) ([]model.OrderChainRow, error) {
	return l.chain.ListByOrder(orderNo)
}

// GetSettlements 查询订单的全部结算记录
func (l *OrderLogic) GetSettlements(orderNo string) ([]model.SettlementRecord, error) {
	return l.settlements.ListByOrder(orderNo)
}

// GetOrdersByMember 分页查询会员订单行
func (l *OrderLogic) GetOrdersByMember(memberNo string, page, pageSize int) ([]model.OrderChainRow, int64, error) {
	return l.chain.ListByMember(memberNo, page, pageSize)
}

// NewOrderNumber 预先发放订单号，供前端在支付发起前使用
func (l *OrderLogic) NewOrderNumber() string {
	return newNumber("ORD")
}
