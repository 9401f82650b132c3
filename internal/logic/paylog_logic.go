package logic

import (
	"encoding/json"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// PayLogLogic 支付接口日志（审计）
// 只追加写入，失败仅记录日志，绝不中断所属结算操作
type PayLogLogic struct {
	store PayLogStore
	pool  *ants.Pool
}

// NewPayLogLogic 创建支付接口日志逻辑，内部使用协程池异步写入
func NewPayLogLogic(store PayLogStore) (*PayLogLogic, error) {
	pool, err := ants.NewPool(8, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &PayLogLogic{store: store, pool: pool}, nil
}

// Record 记录一次渠道请求/响应，callErr 不为空时响应体记录错误信息
func (p *PayLogLogic) Record(payNo, memberNo, logCode string, request, response interface{}, callErr error) {
	reqJSON := marshalPayload(request)

	var respJSON string
	if callErr != nil {
		respJSON = marshalPayload(map[string]interface{}{"success": false, "error": callErr.Error()})
	} else {
		respJSON = marshalPayload(response)
	}

	entry := &model.PayInterfaceLog{
		PayInterfaceNo: newNumber("PIL"),
		PayNo:          payNo,
		MemberNo:       memberNo,
		PayLogCode:     logCode,
		RequestJSON:    reqJSON,
		ResponseJSON:   respJSON,
		AuditColumns:   model.NewAuditColumns(memberNo, time.Now()),
	}

	task := func() {
		if err := p.store.Insert(entry); err != nil {
			logger.Error("Failed to insert pay interface log. payNo=%s: %v", payNo, err)
		}
	}

	// 池满时退化为同步写
	if err := p.pool.Submit(task); err != nil {
		task()
	}
}

// ListByPayNo 查询某结算编号的全部接口日志
func (p *PayLogLogic) ListByPayNo(payNo string) ([]model.PayInterfaceLog, error) {
	return p.store.ListByPayNo(payNo)
}

// Close 释放协程池
func (p *PayLogLogic) Close() {
	p.pool.Release()
}

func marshalPayload(v interface{}) string {
	if v == nil {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
