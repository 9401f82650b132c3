package rail

import (
	"context"
	"fmt"

	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// PointService 积分账本操作（由 logic 层实现）
type PointService interface {
	Balance(memberNo string) (int64, error)
	Debit(memberNo string, amount int64, reasonCode, reasonNo string) ([]model.LotUsage, error)
	Credit(memberNo string, amount int64, reasonCode, reasonNo string) (string, error)
}

// PointAdapter 积分渠道适配器（内部账本，无外部网络调用）
type PointAdapter struct {
	points PointService
}

// NewPointAdapter 创建积分渠道适配器
func NewPointAdapter(points PointService) *PointAdapter {
	return &PointAdapter{points: points}
}

// WayCode 支付方式代码
func (a *PointAdapter) WayCode() string {
	return model.PayWayPoint
}

// Initiate 仅做余额可行性检查，不扣减
func (a *PointAdapter) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	balance, err := a.points.Balance(req.MemberNo)
	if err != nil {
		return nil, fmt.Errorf("point balance: %w", err)
	}
	if balance < req.Amount {
		return nil, fmt.Errorf("%w: point balance %d < %d", ErrRejected, balance, req.Amount)
	}
	return &InitiateResponse{PayWayCode: model.PayWayPoint}, nil
}

// Settle 扣减积分（按有效期先进先出）
func (a *PointAdapter) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	usages, err := a.points.Debit(req.MemberNo, req.Amount, model.PointReasonOrder, req.PayNo)
	if err != nil {
		// 账本的业务失败属于终态拒绝
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	logger.Info("Point settle completed. payNo=%s, memberNo=%s, lots=%d", req.PayNo, req.MemberNo, len(usages))
	// 积分渠道没有外部交易号，以结算编号代替
	return &SettleResult{TrdNo: req.PayNo}, nil
}

// Reverse 撤销积分使用 = 重新累积同额积分
func (a *PointAdapter) Reverse(ctx context.Context, req ReverseRequest) (*ReverseResult, error) {
	lotNo, err := a.points.Credit(req.MemberNo, req.Amount, model.PointReasonOrder, req.PayNo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	logger.Info("Point reverse completed. payNo=%s, memberNo=%s, lotNo=%s", req.PayNo, req.MemberNo, lotNo)
	return &ReverseResult{CancelTrdNo: lotNo}, nil
}

// NetCancel 积分渠道的网络取消与普通撤销一致
func (a *PointAdapter) NetCancel(ctx context.Context, req ReverseRequest) (*ReverseResult, error) {
	return a.Reverse(ctx, req)
}
