package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// maxCASRetries 乐观更新冲突的重试上限
const maxCASRetries = 3

var (
	// ErrInvalidAmount 金额必须大于0
	ErrInvalidAmount = errors.New("point amount must be positive")
	// ErrInsufficientBalance 可用积分不足
	ErrInsufficientBalance = errors.New("insufficient point balance")
	// ErrConcurrencyConflict 乐观更新重试次数耗尽
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// PointLogic 积分账本业务逻辑
// 累积产生批次，使用按有效期先进先出消耗批次，历史只追加不修改
type PointLogic struct {
	lots PointLotStore
	now  func() time.Time
}

// NewPointLogic 创建积分账本业务逻辑
func NewPointLogic(lots PointLotStore) *PointLogic {
	return &PointLogic{lots: lots, now: time.Now}
}

// Credit 积分累积：创建一个新批次，有效期从当天零点起365天
func (p *PointLogic) Credit(memberNo string, amount int64, reasonCode, reasonNo string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	now := p.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, model.PointValidityDays)

	lotNo := newNumber("PNT")
	lot := &model.PointLot{
		PointHistoryNo:  lotNo,
		MemberNo:        memberNo,
		Amount:          amount,
		RemainPoint:     amount,
		PointTxnCode:    model.PointTxnEarn,
		PointReasonCode: reasonCode,
		PointReasonNo:   reasonNo,
		StartDateTime:   start,
		EndDateTime:     end,
		AuditColumns:    model.NewAuditColumns(memberNo, now),
	}

	if err := p.lots.Insert(lot); err != nil {
		return "", fmt.Errorf("insert point lot: %w", err)
	}

	logger.Info("Point credited. memberNo=%s, lotNo=%s, amount=%d", memberNo, lotNo, amount)
	return lotNo, nil
}

// GrantSignupLot 注册时创建零余额批次（保证会员至少有一条积分记录）
func (p *PointLogic) GrantSignupLot(memberNo string) (string, error) {
	now := p.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	lotNo := newNumber("PNT")
	lot := &model.PointLot{
		PointHistoryNo:  lotNo,
		MemberNo:        memberNo,
		Amount:          0,
		RemainPoint:     0,
		PointTxnCode:    model.PointTxnEarn,
		PointReasonCode: model.PointReasonEtc,
		StartDateTime:   start,
		EndDateTime:     start.AddDate(0, 0, model.PointValidityDays),
		AuditColumns:    model.NewAuditColumns(memberNo, now),
	}

	if err := p.lots.Insert(lot); err != nil {
		return "", fmt.Errorf("insert signup lot: %w", err)
	}
	return lotNo, nil
}

// Balance 可用积分 = 未过期累积批次的剩余之和
func (p *PointLogic) Balance(memberNo string) (int64, error) {
	lots, err := p.lots.ListAvailable(memberNo, p.now())
	if err != nil {
		return 0, fmt.Errorf("list available lots: %w", err)
	}

	var balance int64
	for _, lot := range lots {
		balance += lot.RemainPoint
	}
	return balance, nil
}

// Debit 积分使用：余额不足时整体失败不做部分扣减，
// 否则按有效期临近顺序逐批次CAS扣减，每个批次写一条使用记录
func (p *PointLogic) Debit(memberNo string, amount int64, reasonCode, reasonNo string) ([]model.LotUsage, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	now := p.now()
	lots, err := p.lots.ListAvailable(memberNo, now)
	if err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}

	var balance int64
	for _, lot := range lots {
		balance += lot.RemainPoint
	}
	if balance < amount {
		return nil, fmt.Errorf("%w: balance=%d, requested=%d", ErrInsufficientBalance, balance, amount)
	}

	usages := make([]model.LotUsage, 0, len(lots))
	remaining := amount

	for i := range lots {
		if remaining <= 0 {
			break
		}
		lot := lots[i]

		take, err := p.consumeLot(&lot, remaining, memberNo, now)
		if err != nil {
			// 已扣减的批次退回，保证失败时无部分提交
			p.restore(usages, memberNo, now)
			return nil, err
		}
		if take == 0 {
			continue
		}

		useNo := newNumber("PNT")
		use := &model.PointLot{
			PointHistoryNo:      useNo,
			MemberNo:            memberNo,
			Amount:              take,
			RemainPoint:         0,
			PointTxnCode:        model.PointTxnUse,
			PointReasonCode:     reasonCode,
			PointReasonNo:       reasonNo,
			UpperPointHistoryNo: lot.PointHistoryNo,
			StartDateTime:       lot.StartDateTime,
			EndDateTime:         lot.EndDateTime,
			AuditColumns:        model.NewAuditColumns(memberNo, now),
		}
		if err := p.lots.Insert(use); err != nil {
			p.restore(append(usages, model.LotUsage{PointHistoryNo: lot.PointHistoryNo, Amount: take}), memberNo, now)
			return nil, fmt.Errorf("insert use history: %w", err)
		}

		usages = append(usages, model.LotUsage{PointHistoryNo: lot.PointHistoryNo, Amount: take})
		remaining -= take
	}

	if remaining > 0 {
		// 并发扣减吃掉了余额，退回已扣减部分
		p.restore(usages, memberNo, now)
		return nil, fmt.Errorf("%w: concurrent debit exhausted balance", ErrInsufficientBalance)
	}

	logger.Info("Point debited. memberNo=%s, amount=%d, lots=%d", memberNo, amount, len(usages))
	return usages, nil
}

// consumeLot 以CAS扣减单个批次，冲突时以最新剩余值重试
func (p *PointLogic) consumeLot(lot *model.PointLot, want int64, operator string, now time.Time) (int64, error) {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		take := lot.RemainPoint
		if take > want {
			take = want
		}
		if take <= 0 {
			return 0, nil
		}

		err := p.lots.UpdateRemain(lot.PointHistoryNo, lot.RemainPoint, lot.RemainPoint-take, operator)
		if err == nil {
			return take, nil
		}
		if !errors.Is(err, model.ErrCASConflict) {
			return 0, fmt.Errorf("update lot remain: %w", err)
		}

		// 重新读取最新剩余值
		latest, err := p.lots.Get(lot.PointHistoryNo)
		if err != nil {
			return 0, fmt.Errorf("reload lot: %w", err)
		}
		lot.RemainPoint = latest.RemainPoint
		if lot.Expired(now) {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("%w: lot %s", ErrConcurrencyConflict, lot.PointHistoryNo)
}

// restore 扣减失败时退回本次已消耗的批次
func (p *PointLogic) restore(usages []model.LotUsage, operator string, now time.Time) {
	for _, u := range usages {
		for attempt := 0; attempt < maxCASRetries; attempt++ {
			latest, err := p.lots.Get(u.PointHistoryNo)
			if err != nil {
				logger.Error("Failed to reload lot for restore. lotNo=%s: %v", u.PointHistoryNo, err)
				break
			}
			err = p.lots.UpdateRemain(u.PointHistoryNo, latest.RemainPoint, latest.RemainPoint+u.Amount, operator)
			if err == nil {
				break
			}
			if !errors.Is(err, model.ErrCASConflict) {
				logger.Error("Failed to restore lot. lotNo=%s, amount=%d: %v", u.PointHistoryNo, u.Amount, err)
				break
			}
		}
	}
}

// History 分页查询会员积分记录
func (p *PointLogic) History(memberNo string, page, pageSize int) ([]model.PointLot, int64, error) {
	return p.lots.ListByMember(memberNo, page, pageSize)
}
