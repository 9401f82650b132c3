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
	// ErrAlreadyCancelled 取消目标已被取消或不是最新处理行
	ErrAlreadyCancelled = errors.New("order line already cancelled")
	// ErrInvalidClaimTarget 取消目标不存在或不可取消
	ErrInvalidClaimTarget = errors.New("invalid claim target")
	// ErrInsufficientRefundable 剩余可取消金额不足以覆盖取消总额
	ErrInsufficientRefundable = errors.New("insufficient refundable amount")
)

// ClaimTarget 取消目标订单行
type ClaimTarget struct {
	OrderNo         string `json:"order_no"`
	OrderSequence   int64  `json:"order_sequence"`
	ProcessSequence int64  `json:"process_sequence"`
}

// CancelOrderRequest 订单取消请求
type CancelOrderRequest struct {
	MemberNo string        `json:"member_no"`
	Targets  []ClaimTarget `json:"targets"`
	Reason   string        `json:"reason"`
}

// refundAllocation 单条结算记录分摊到的取消金额
type refundAllocation struct {
	record model.SettlementRecord
	amount int64
}

// ClaimLogic 取消分摊与撤销执行
// 取消金额从积分开始贪心分摊，撤销也从积分开始执行（积分先退，卡最后）
type ClaimLogic struct {
	settlements SettlementStore
	chain       ChainStore
	registry    *rail.Registry
	paylog      *PayLogLogic
	now         func() time.Time
}

// NewClaimLogic 创建取消逻辑
func NewClaimLogic(settlements SettlementStore, chain ChainStore, registry *rail.Registry, paylog *PayLogLogic) *ClaimLogic {
	return &ClaimLogic{
		settlements: settlements,
		chain:       chain,
		registry:    registry,
		paylog:      paylog,
		now:         time.Now,
	}
}

// CancelOrder 取消订单行：校验 → 分摊 → 逐渠道撤销 → 取消记录与订单链落库
// 某渠道撤销失败时中止，此前已完成的撤销保持生效，返回错误供上层重试剩余部分
func (l *ClaimLogic) CancelOrder(ctx context.Context, req CancelOrderRequest) (string, error) {
	if len(req.Targets) == 0 {
		return "", fmt.Errorf("%w: no targets", ErrInvalidClaimTarget)
	}

	claimNo := newNumber("CLM")
	logger.Info("Order cancellation started. memberNo=%s, claimNo=%s, targetCount=%d",
		req.MemberNo, claimNo, len(req.Targets))

	// 按订单号分组，逐订单校验并计算取消金额
	// 同一请求内重复目标直接拒绝，否则取消金额会被重复计入
	byOrder := make(map[string][]ClaimTarget)
	orderNos := make([]string, 0)
	seen := make(map[ClaimTarget]struct{}, len(req.Targets))
	for _, t := range req.Targets {
		if _, dup := seen[t]; dup {
			return "", fmt.Errorf("%w: duplicate target %s-%d-%d",
				ErrInvalidClaimTarget, t.OrderNo, t.OrderSequence, t.ProcessSequence)
		}
		seen[t] = struct{}{}
		if _, ok := byOrder[t.OrderNo]; !ok {
			orderNos = append(orderNos, t.OrderNo)
		}
		byOrder[t.OrderNo] = append(byOrder[t.OrderNo], t)
	}

	for _, orderNo := range orderNos {
		targets := byOrder[orderNo]

		rows, total, err := l.validateTargets(targets)
		if err != nil {
			return "", err
		}

		allocations, err := l.allocate(orderNo, total)
		if err != nil {
			return "", err
		}

		if err := l.reverseAll(ctx, claimNo, req, allocations); err != nil {
			return "", err
		}

		if err := l.appendCancelRows(claimNo, req.MemberNo, rows); err != nil {
			return "", err
		}

		logger.Info("Order cancellation completed. orderNo=%s, claimNo=%s, amount=%d",
			orderNo, claimNo, total)
	}

	return claimNo, nil
}

// validateTargets 校验取消目标均为各自订单行的最新处理行且状态可取消
func (l *ClaimLogic) validateTargets(targets []ClaimTarget) ([]model.OrderChainRow, int64, error) {
	rows := make([]model.OrderChainRow, 0, len(targets))
	var total int64

	for _, t := range targets {
		row, err := l.chain.GetByKey(t.OrderNo, t.OrderSequence, t.ProcessSequence)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, 0, fmt.Errorf("%w: %s-%d-%d", ErrInvalidClaimTarget, t.OrderNo, t.OrderSequence, t.ProcessSequence)
			}
			return nil, 0, fmt.Errorf("get order row: %w", err)
		}

		latest, err := l.chain.LatestProcessSequence(t.OrderNo, t.OrderSequence)
		if err != nil {
			return nil, 0, fmt.Errorf("get latest process sequence: %w", err)
		}
		if t.ProcessSequence != latest {
			return nil, 0, fmt.Errorf("%w: %s-%d newer process exists", ErrAlreadyCancelled, t.OrderNo, t.OrderSequence)
		}
		if row.OrderTypeCode != model.OrderTypeOrder || row.OrderStatusCode != model.OrderStatusReceived {
			return nil, 0, fmt.Errorf("%w: %s-%d", ErrAlreadyCancelled, t.OrderNo, t.OrderSequence)
		}

		rows = append(rows, *row)
		total += row.LineAmount()
	}

	return rows, total, nil
}

// allocate 取消金额贪心分摊：积分先耗尽，卡最后
// 与撤销顺序一致，积分分摊不足时才动用卡的可取消金额
func (l *ClaimLogic) allocate(orderNo string, total int64) ([]refundAllocation, error) {
	records, err := l.settlements.ListByOrder(orderNo)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}

	candidates := make([]model.SettlementRecord, 0, len(records))
	for _, r := range records {
		if r.IsPayment() && r.IsCompleted() && r.CancelableAmount > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return model.PayWayPriority(candidates[i].PayWayCode) > model.PayWayPriority(candidates[j].PayWayCode)
	})

	allocations := make([]refundAllocation, 0, len(candidates))
	remaining := total
	for _, r := range candidates {
		if remaining <= 0 {
			break
		}
		amount := r.CancelableAmount
		if amount > remaining {
			amount = remaining
		}
		allocations = append(allocations, refundAllocation{record: r, amount: amount})
		remaining -= amount
	}

	if remaining > 0 {
		return nil, fmt.Errorf("%w: short by %d (orderNo=%s)", ErrInsufficientRefundable, remaining, orderNo)
	}
	return allocations, nil
}

// reverseAll 按支付优先级降序执行撤销：积分先退、卡最后
// 渠道撤销失败时立即中止，已完成的撤销保持生效
func (l *ClaimLogic) reverseAll(ctx context.Context, claimNo string, req CancelOrderRequest, allocations []refundAllocation) error {
	ordered := make([]refundAllocation, len(allocations))
	copy(ordered, allocations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.PayWayPriority(ordered[i].record.PayWayCode) > model.PayWayPriority(ordered[j].record.PayWayCode)
	})

	for _, a := range ordered {
		if err := l.reverseOne(ctx, claimNo, req, a); err != nil {
			logger.Error("Refund failed, aborting remaining refunds. claimNo=%s, payNo=%s: %v",
				claimNo, a.record.PayNo, err)
			return err
		}
	}
	return nil
}

// reverseOne 单条结算撤销：渠道调用 → CAS扣减可取消金额 → 取消记录落库
func (l *ClaimLogic) reverseOne(ctx context.Context, claimNo string, req CancelOrderRequest, a refundAllocation) error {
	adapter, err := l.registry.Resolve(a.record.PayWayCode)
	if err != nil {
		return err
	}

	cancelPayNo := newNumber("PAY")
	rreq := rail.ReverseRequest{
		PayNo:      cancelPayNo,
		OrderNo:    a.record.OrderNo,
		MemberNo:   a.record.MemberNo,
		TrdNo:      a.record.TrdNo,
		PgTypeCode: a.record.PgTypeCode,
		Amount:     a.amount,
		Reason:     req.Reason,
	}
	result, err := adapter.Reverse(ctx, rreq)
	l.paylog.Record(cancelPayNo, a.record.MemberNo, model.PayLogCancel, rreq, result, err)
	if err != nil {
		return fmt.Errorf("reverse payNo=%s: %w", a.record.PayNo, err)
	}

	if err := l.decrementCancelable(a.record.PayNo, a.amount, req.MemberNo); err != nil {
		logger.Error("Failed to decrement cancelable amount. payNo=%s: %v", a.record.PayNo, err)
		return err
	}

	now := l.now()
	cancelRec := &model.SettlementRecord{
		PayNo:            cancelPayNo,
		OrderNo:          a.record.OrderNo,
		ClaimNo:          claimNo,
		UpperPayNo:       a.record.PayNo,
		PayTypeCode:      model.PayTypeCancel,
		PayWayCode:       a.record.PayWayCode,
		PayStatusCode:    model.PayStatusCancelled,
		PgTypeCode:       a.record.PgTypeCode,
		TrdNo:            a.record.TrdNo,
		MemberNo:         a.record.MemberNo,
		Amount:           a.amount,
		CancelableAmount: 0,
		PayFinishDtm:     &now,
		AuditColumns:     model.NewAuditColumns(req.MemberNo, now),
	}
	if err := l.settlements.Insert(cancelRec); err != nil {
		return fmt.Errorf("insert cancel record: %w", err)
	}

	logger.Info("Refund processed. claimNo=%s, payNo=%s, upperPayNo=%s, amount=%d",
		claimNo, cancelPayNo, a.record.PayNo, a.amount)
	return nil
}

// decrementCancelable CAS扣减剩余可取消金额，冲突时重读重试
func (l *ClaimLogic) decrementCancelable(payNo string, amount int64, operator string) error {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		rec, err := l.settlements.Get(payNo)
		if err != nil {
			return err
		}
		if rec.CancelableAmount < amount {
			return fmt.Errorf("%w: cancelable %d < refund %d (payNo=%s)",
				ErrInsufficientRefundable, rec.CancelableAmount, amount, payNo)
		}

		err = l.settlements.DecrementCancelable(payNo, rec.CancelableAmount, amount, operator)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrCASConflict) {
			return err
		}
		logger.Warn("Concurrent cancelable update detected, retrying. payNo=%s, attempt=%d", payNo, attempt+1)
	}
	return ErrConcurrencyConflict
}

// appendCancelRows 为每个取消目标追加取消处理行（处理序号=最新+1）
func (l *ClaimLogic) appendCancelRows(claimNo, operator string, rows []model.OrderChainRow) error {
	now := l.now()

	for _, row := range rows {
		latest, err := l.chain.LatestProcessSequence(row.OrderNo, row.OrderSequence)
		if err != nil {
			return fmt.Errorf("get latest process sequence: %w", err)
		}

		cancelRow := &model.OrderChainRow{
			OrderNo:              row.OrderNo,
			OrderSequence:        row.OrderSequence,
			ProcessSequence:      latest + 1,
			UpperProcessSequence: row.ProcessSequence,
			ClaimNo:              claimNo,
			MemberNo:             row.MemberNo,
			GoodsNo:              row.GoodsNo,
			ItemNo:               row.ItemNo,
			GoodsName:            row.GoodsName,
			Quantity:             row.Quantity,
			SalePrice:            row.SalePrice,
			OrderTypeCode:        model.OrderTypeCancel,
			OrderStatusCode:      model.OrderStatusCancelled,
			OrderAcceptDtm:       now,
			AuditColumns:         model.NewAuditColumns(operator, now),
		}
		if err := l.chain.Insert(cancelRow); err != nil {
			return fmt.Errorf("insert cancel row: %w", err)
		}
	}
	return nil
}
