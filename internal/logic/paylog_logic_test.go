package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

func waitForLogs(t *testing.T, store *fakePayLogStore, payNo string, want int) []model.PayInterfaceLog {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		logs, err := store.ListByPayNo(payNo)
		require.NoError(t, err)
		if len(logs) >= want {
			return logs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d logs for payNo=%s", want, payNo)
	return nil
}

func TestPayLogRecord(t *testing.T) {
	store := newFakePayLogStore()
	p, err := NewPayLogLogic(store)
	require.NoError(t, err)
	defer p.Close()

	p.Record("PAY001", "M001", model.PayLogApproval,
		map[string]string{"orderNo": "ORD001"},
		map[string]string{"tid": "TID001"},
		nil)

	logs := waitForLogs(t, store, "PAY001", 1)
	assert.Equal(t, model.PayLogApproval, logs[0].PayLogCode)
	assert.Contains(t, logs[0].RequestJSON, "ORD001")
	assert.Contains(t, logs[0].ResponseJSON, "TID001")
	assert.NotEmpty(t, logs[0].PayInterfaceNo)
}

func TestPayLogRecordCallError(t *testing.T) {
	store := newFakePayLogStore()
	p, err := NewPayLogLogic(store)
	require.NoError(t, err)
	defer p.Close()

	p.Record("PAY002", "M001", model.PayLogNetCancel, nil, nil, errors.New("gateway timeout"))

	logs := waitForLogs(t, store, "PAY002", 1)
	// 调用失败时响应体记录错误信息
	assert.Contains(t, logs[0].ResponseJSON, `"success":false`)
	assert.Contains(t, logs[0].ResponseJSON, "gateway timeout")
}
