package rail

import (
	"context"
	"fmt"

	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// CardAdapter 信用卡渠道适配器
// 同一渠道下有多个PG公司，发起时按权重选择，结算/撤销时按记录中的PG代码路由
type CardAdapter struct {
	gateways map[string]Gateway
	selector *WeightSelector
}

// NewCardAdapter 创建信用卡渠道适配器
func NewCardAdapter(selector *WeightSelector, gateways ...Gateway) *CardAdapter {
	m := make(map[string]Gateway, len(gateways))
	for _, g := range gateways {
		m[g.PgTypeCode()] = g
	}
	return &CardAdapter{gateways: m, selector: selector}
}

// WayCode 支付方式代码
func (a *CardAdapter) WayCode() string {
	return model.PayWayCreditCard
}

func (a *CardAdapter) gateway(pgTypeCode string) (Gateway, error) {
	g, ok := a.gateways[pgTypeCode]
	if !ok {
		return nil, fmt.Errorf("unknown pg type code: %s", pgTypeCode)
	}
	return g, nil
}

// Initiate 按权重选择PG公司并生成支付窗口参数，不发生资金流动
func (a *CardAdapter) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	pgTypeCode := a.selector.Select()
	g, err := a.gateway(pgTypeCode)
	if err != nil {
		return nil, err
	}

	form, err := g.BuildInitiateForm(req)
	if err != nil {
		return nil, fmt.Errorf("build initiate form: %w", err)
	}

	logger.Info("Card initiate completed. orderNo=%s, pgTypeCode=%s", req.OrderNo, pgTypeCode)
	return &InitiateResponse{
		PayWayCode: model.PayWayCreditCard,
		PgTypeCode: pgTypeCode,
		FormData:   form,
	}, nil
}

// Settle 调用PG承认接口完成扣款
func (a *CardAdapter) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	g, err := a.gateway(req.PgTypeCode)
	if err != nil {
		return nil, err
	}

	resp, err := g.Approve(ctx, ApproveRequest{
		OrderNo:   req.OrderNo,
		PayNo:     req.PayNo,
		AuthToken: req.AuthToken,
		Amount:    req.Amount,
	})
	if err != nil {
		return nil, err
	}

	return &SettleResult{ApproveNo: resp.ApproveNo, TrdNo: resp.TrdNo}, nil
}

// Reverse 调用PG取消接口退款
func (a *CardAdapter) Reverse(ctx context.Context, req ReverseRequest) (*ReverseResult, error) {
	g, err := a.gateway(req.PgTypeCode)
	if err != nil {
		return nil, err
	}

	resp, err := g.Cancel(ctx, CancelRequest{
		OrderNo: req.OrderNo,
		TrdNo:   req.TrdNo,
		Amount:  req.Amount,
		Reason:  req.Reason,
		Partial: true,
	})
	if err != nil {
		return nil, err
	}

	return &ReverseResult{CancelTrdNo: resp.CancelTrdNo}, nil
}

// NetCancel 调用PG网络取消接口
func (a *CardAdapter) NetCancel(ctx context.Context, req ReverseRequest) (*ReverseResult, error) {
	g, err := a.gateway(req.PgTypeCode)
	if err != nil {
		return nil, err
	}

	resp, err := g.NetCancel(ctx, CancelRequest{
		OrderNo: req.OrderNo,
		TrdNo:   req.TrdNo,
		Amount:  req.Amount,
		Reason:  req.Reason,
	})
	if err != nil {
		return nil, err
	}

	return &ReverseResult{CancelTrdNo: resp.CancelTrdNo}, nil
}
