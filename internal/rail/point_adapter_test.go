package rail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// stubPointService 可配置结果的积分账本
type stubPointService struct {
	balance   int64
	debitErr  error
	creditErr error
	debits    []int64
	credits   []int64
}

func (s *stubPointService) Balance(memberNo string) (int64, error) {
	return s.balance, nil
}

func (s *stubPointService) Debit(memberNo string, amount int64, reasonCode, reasonNo string) ([]model.LotUsage, error) {
	if s.debitErr != nil {
		return nil, s.debitErr
	}
	s.debits = append(s.debits, amount)
	return []model.LotUsage{{PointHistoryNo: "PNT001", Amount: amount}}, nil
}

func (s *stubPointService) Credit(memberNo string, amount int64, reasonCode, reasonNo string) (string, error) {
	if s.creditErr != nil {
		return "", s.creditErr
	}
	s.credits = append(s.credits, amount)
	return "PNT-NEW", nil
}

func TestPointAdapterInitiate(t *testing.T) {
	svc := &stubPointService{balance: 5000}
	a := NewPointAdapter(svc)

	resp, err := a.Initiate(context.Background(), InitiateRequest{MemberNo: "M001", Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, model.PayWayPoint, resp.PayWayCode)

	// 余额检查不扣减
	assert.Empty(t, svc.debits)
}

func TestPointAdapterInitiateInsufficientBalance(t *testing.T) {
	a := NewPointAdapter(&stubPointService{balance: 4999})

	_, err := a.Initiate(context.Background(), InitiateRequest{MemberNo: "M001", Amount: 5000})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestPointAdapterSettle(t *testing.T) {
	svc := &stubPointService{balance: 5000}
	a := NewPointAdapter(svc)

	result, err := a.Settle(context.Background(), SettleRequest{
		PayNo:    "PAY001",
		MemberNo: "M001",
		Amount:   3000,
	})
	require.NoError(t, err)
	// 积分渠道以结算编号作为交易号
	assert.Equal(t, "PAY001", result.TrdNo)
	assert.Equal(t, []int64{3000}, svc.debits)
}

func TestPointAdapterSettleDebitFailure(t *testing.T) {
	a := NewPointAdapter(&stubPointService{debitErr: errors.New("insufficient")})

	_, err := a.Settle(context.Background(), SettleRequest{PayNo: "PAY001", MemberNo: "M001", Amount: 3000})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestPointAdapterReverseCreditsBack(t *testing.T) {
	svc := &stubPointService{}
	a := NewPointAdapter(svc)

	result, err := a.Reverse(context.Background(), ReverseRequest{
		PayNo:    "PAY002",
		MemberNo: "M001",
		Amount:   3000,
	})
	require.NoError(t, err)
	assert.Equal(t, "PNT-NEW", result.CancelTrdNo)
	assert.Equal(t, []int64{3000}, svc.credits)
}

func TestPointAdapterNetCancelCreditsBack(t *testing.T) {
	svc := &stubPointService{}
	a := NewPointAdapter(svc)

	_, err := a.NetCancel(context.Background(), ReverseRequest{PayNo: "PAY002", MemberNo: "M001", Amount: 3000})
	require.NoError(t, err)
	assert.Equal(t, []int64{3000}, svc.credits)
}
