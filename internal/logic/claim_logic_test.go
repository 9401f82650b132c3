package logic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"github.com/phj1120/vibe-pay-sub000/internal/rail"
)

type claimFixture struct {
	settlements *fakeSettlementStore
	chain       *fakeChainStore
	card        *fakeAdapter
	point       *fakeAdapter
	log         *callLog
	logic       *ClaimLogic
}

// newClaimFixture 构造已完成结算的订单：卡30000 + 积分5000
// 商品行：序号1金额25000，序号2金额10000
func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	log := &callLog{}
	card := &fakeAdapter{wayCode: model.PayWayCreditCard, log: log}
	point := &fakeAdapter{wayCode: model.PayWayPoint, log: log}

	settlements := newFakeSettlementStore()
	chain := newFakeChainStore()
	paylog, err := NewPayLogLogic(newFakePayLogStore())
	require.NoError(t, err)
	t.Cleanup(paylog.Close)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, settlements.Insert(&model.SettlementRecord{
		PayNo:            "PAY-CARD",
		OrderNo:          "ORD001",
		PayTypeCode:      model.PayTypePayment,
		PayWayCode:       model.PayWayCreditCard,
		PayStatusCode:    model.PayStatusCompleted,
		PgTypeCode:       model.PgTypeInicis,
		TrdNo:            "TRD-CARD",
		MemberNo:         "M001",
		Amount:           30000,
		CancelableAmount: 30000,
		PayFinishDtm:     &now,
	}))
	require.NoError(t, settlements.Insert(&model.SettlementRecord{
		PayNo:            "PAY-POINT",
		OrderNo:          "ORD001",
		PayTypeCode:      model.PayTypePayment,
		PayWayCode:       model.PayWayPoint,
		PayStatusCode:    model.PayStatusCompleted,
		TrdNo:            "TRD-POINT",
		MemberNo:         "M001",
		Amount:           5000,
		CancelableAmount: 5000,
		PayFinishDtm:     &now,
	}))

	require.NoError(t, chain.Insert(&model.OrderChainRow{
		OrderNo: "ORD001", OrderSequence: 1, ProcessSequence: 1,
		MemberNo: "M001", GoodsNo: "G001", ItemNo: "I001",
		Quantity: 1, SalePrice: 25000,
		OrderTypeCode: model.OrderTypeOrder, OrderStatusCode: model.OrderStatusReceived,
	}))
	require.NoError(t, chain.Insert(&model.OrderChainRow{
		OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1,
		MemberNo: "M001", GoodsNo: "G002", ItemNo: "I001",
		Quantity: 1, SalePrice: 10000,
		OrderTypeCode: model.OrderTypeOrder, OrderStatusCode: model.OrderStatusReceived,
	}))

	return &claimFixture{
		settlements: settlements,
		chain:       chain,
		card:        card,
		point:       point,
		log:         log,
		logic:       NewClaimLogic(settlements, chain, rail.NewRegistry(card, point), paylog),
	}
}

func TestCancelOrderFullRefund(t *testing.T) {
	f := newClaimFixture(t)

	claimNo, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets: []ClaimTarget{
			{OrderNo: "ORD001", OrderSequence: 1, ProcessSequence: 1},
			{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1},
		},
		Reason: "customer request",
	})
	require.NoError(t, err)
	require.NotEmpty(t, claimNo)

	// 撤销顺序：积分先退，卡最后
	assert.Equal(t, []string{
		"reverse:" + model.PayWayPoint,
		"reverse:" + model.PayWayCreditCard,
	}, f.log.list())

	// 原结算的可取消金额清零
	assert.Equal(t, int64(0), f.settlements.byPayNo("PAY-CARD").CancelableAmount)
	assert.Equal(t, int64(0), f.settlements.byPayNo("PAY-POINT").CancelableAmount)

	// 每个渠道一条取消记录
	cancels := f.settlements.byType("ORD001", model.PayTypeCancel)
	require.Len(t, cancels, 2)
	for _, rec := range cancels {
		assert.Equal(t, claimNo, rec.ClaimNo)
		assert.Equal(t, model.PayStatusCancelled, rec.PayStatusCode)
		assert.Equal(t, int64(0), rec.CancelableAmount)
		assert.NotEmpty(t, rec.UpperPayNo)
		// 取消记录保留原外部交易号
		original := f.settlements.byPayNo(rec.UpperPayNo)
		require.NotNil(t, original)
		assert.Equal(t, original.TrdNo, rec.TrdNo)
		assert.Equal(t, original.Amount, rec.Amount)
	}

	// 每个目标行追加一条取消处理行
	rows, _ := f.chain.ListByOrder("ORD001")
	require.Len(t, rows, 4)
	var cancelRows []model.OrderChainRow
	for _, row := range rows {
		if row.OrderTypeCode == model.OrderTypeCancel {
			cancelRows = append(cancelRows, row)
		}
	}
	require.Len(t, cancelRows, 2)
	for _, row := range cancelRows {
		assert.Equal(t, int64(2), row.ProcessSequence)
		assert.Equal(t, int64(1), row.UpperProcessSequence)
		assert.Equal(t, claimNo, row.ClaimNo)
		assert.Equal(t, model.OrderStatusCancelled, row.OrderStatusCode)
	}
}

func TestCancelOrderPartialRefundDrainsPointFirst(t *testing.T) {
	f := newClaimFixture(t)

	// 取消10000的商品行：积分5000先耗尽，剩余5000由卡承担
	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"reverse:" + model.PayWayPoint,
		"reverse:" + model.PayWayCreditCard,
	}, f.log.list())
	assert.Equal(t, int64(0), f.settlements.byPayNo("PAY-POINT").CancelableAmount)
	assert.Equal(t, int64(25000), f.settlements.byPayNo("PAY-CARD").CancelableAmount)

	cancels := f.settlements.byType("ORD001", model.PayTypeCancel)
	require.Len(t, cancels, 2)
	byWay := map[string]int64{}
	for _, rec := range cancels {
		byWay[rec.PayWayCode] = rec.Amount
	}
	assert.Equal(t, int64(5000), byWay[model.PayWayPoint])
	assert.Equal(t, int64(5000), byWay[model.PayWayCreditCard])
}

func TestCancelOrderInvalidTarget(t *testing.T) {
	f := newClaimFixture(t)

	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{{OrderNo: "ORD001", OrderSequence: 9, ProcessSequence: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidClaimTarget)
	assert.Empty(t, f.log.list())
}

func TestCancelOrderDuplicateTarget(t *testing.T) {
	f := newClaimFixture(t)

	// 同一请求内重复目标：拒绝，避免取消金额翻倍
	target := ClaimTarget{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1}
	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{target, target},
	})
	assert.ErrorIs(t, err, ErrInvalidClaimTarget)
	assert.Empty(t, f.log.list())

	// 未发生任何撤销
	cardRec, err := f.settlements.Get("PAY-CARD")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), cardRec.CancelableAmount)
	pointRec, err := f.settlements.Get("PAY-POINT")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), pointRec.CancelableAmount)
	assert.Empty(t, f.settlements.byType("ORD001", model.PayTypeCancel))
}

func TestCancelOrderAlreadyCancelled(t *testing.T) {
	f := newClaimFixture(t)

	target := ClaimTarget{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1}
	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{target},
	})
	require.NoError(t, err)

	// 同一行重复取消：已有更新的处理行
	_, err = f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{target},
	})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelOrderInsufficientRefundable(t *testing.T) {
	f := newClaimFixture(t)

	// 先取消序号1（25000）：积分5000 + 卡20000，卡剩余10000
	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets: []ClaimTarget{
			{OrderNo: "ORD001", OrderSequence: 1, ProcessSequence: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), f.settlements.byPayNo("PAY-CARD").CancelableAmount)

	// 清空卡的剩余可取消金额，使序号2的取消无处分摊
	require.NoError(t, f.settlements.DecrementCancelable("PAY-CARD", 10000, 10000, "M001"))

	_, err = f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1}},
	})
	assert.ErrorIs(t, err, ErrInsufficientRefundable)
}

func TestCancelOrderReverseFailureAborts(t *testing.T) {
	f := newClaimFixture(t)
	f.card.reverseErr = rail.ErrUnavailable

	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets: []ClaimTarget{
			{OrderNo: "ORD001", OrderSequence: 1, ProcessSequence: 1},
			{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, rail.ErrUnavailable)

	// 积分撤销已生效并保留，卡撤销失败后中止
	assert.Equal(t, []string{
		"reverse:" + model.PayWayPoint,
		"reverse:" + model.PayWayCreditCard,
	}, f.log.list())
	assert.Equal(t, int64(0), f.settlements.byPayNo("PAY-POINT").CancelableAmount)
	assert.Equal(t, int64(30000), f.settlements.byPayNo("PAY-CARD").CancelableAmount)

	// 取消处理行未写入
	rows, _ := f.chain.ListByOrder("ORD001")
	assert.Len(t, rows, 2)
}

func TestCancelOrderCASConflictRetries(t *testing.T) {
	f := newClaimFixture(t)
	f.settlements.conflictOnce["PAY-CARD"] = true

	_, err := f.logic.CancelOrder(context.Background(), CancelOrderRequest{
		MemberNo: "M001",
		Targets:  []ClaimTarget{{OrderNo: "ORD001", OrderSequence: 2, ProcessSequence: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), f.settlements.byPayNo("PAY-CARD").CancelableAmount)
	assert.Equal(t, int64(0), f.settlements.byPayNo("PAY-POINT").CancelableAmount)
}
