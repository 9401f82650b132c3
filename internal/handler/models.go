package handler

import (
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"` // 错误分类代码，成功时为空
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 结算记录相关响应模型

// SettlementResponse 结算记录响应模型
type SettlementResponse struct {
	PayNo            string     `json:"payNo"`
	OrderNo          string     `json:"orderNo"`
	ClaimNo          string     `json:"claimNo,omitempty"`
	UpperPayNo       string     `json:"upperPayNo,omitempty"`
	PayTypeCode      string     `json:"payTypeCode"`
	PayWayCode       string     `json:"payWayCode"`
	PayStatusCode    string     `json:"payStatusCode"`
	PgTypeCode       string     `json:"pgTypeCode,omitempty"`
	ApproveNo        string     `json:"approveNo,omitempty"`
	TrdNo            string     `json:"trdNo,omitempty"`
	Amount           int64      `json:"amount"`
	CancelableAmount int64      `json:"cancelableAmount"`
	PayFinishDtm     *time.Time `json:"payFinishDtm,omitempty"`
	RegistDateTime   time.Time  `json:"registDateTime"`
}

// GetSettlementsResponse 获取订单结算记录响应
type GetSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
}

// CancelOrderResponse 取消订单响应
type CancelOrderResponse struct {
	ClaimNo string `json:"claimNo"`
}

// 订单相关响应模型

// OrderRowResponse 订单处理行响应模型
type OrderRowResponse struct {
	OrderNo              string    `json:"orderNo"`
	OrderSequence        int64     `json:"orderSequence"`
	ProcessSequence      int64     `json:"processSequence"`
	UpperProcessSequence int64     `json:"upperProcessSequence,omitempty"`
	ClaimNo              string    `json:"claimNo,omitempty"`
	GoodsNo              string    `json:"goodsNo"`
	ItemNo               string    `json:"itemNo"`
	GoodsName            string    `json:"goodsName"`
	Quantity             int64     `json:"quantity"`
	SalePrice            int64     `json:"salePrice"`
	OrderTypeCode        string    `json:"orderTypeCode"`
	OrderStatusCode      string    `json:"orderStatusCode"`
	OrderAcceptDtm       time.Time `json:"orderAcceptDtm"`
}

// GetOrderResponse 获取订单详情响应
type GetOrderResponse struct {
	Rows []OrderRowResponse `json:"rows"`
}

// ListOrdersResponse 会员订单列表响应
type ListOrdersResponse struct {
	Rows       []OrderRowResponse `json:"rows"`
	Pagination Pagination         `json:"pagination"`
}

// 积分相关响应模型

// PointLotResponse 积分记录响应模型
type PointLotResponse struct {
	PointHistoryNo      string    `json:"pointHistoryNo"`
	Amount              int64     `json:"amount"`
	RemainPoint         int64     `json:"remainPoint"`
	PointTxnCode        string    `json:"pointTxnCode"`
	PointReasonCode     string    `json:"pointReasonCode"`
	PointReasonNo       string    `json:"pointReasonNo,omitempty"`
	UpperPointHistoryNo string    `json:"upperPointHistoryNo,omitempty"`
	StartDateTime       time.Time `json:"startDateTime"`
	EndDateTime         time.Time `json:"endDateTime"`
}

// GetPointBalanceResponse 获取积分余额响应
type GetPointBalanceResponse struct {
	MemberNo string `json:"memberNo"`
	Balance  int64  `json:"balance"`
}

// GetPointHistoryResponse 获取积分记录响应
type GetPointHistoryResponse struct {
	History    []PointLotResponse `json:"history"`
	Pagination Pagination         `json:"pagination"`
}

// CreditPointResponse 积分发放响应
type CreditPointResponse struct {
	PointHistoryNo string `json:"pointHistoryNo"`
}

// 支付日志相关响应模型

// PayLogResponse 支付接口日志响应模型
type PayLogResponse struct {
	PayInterfaceNo string    `json:"payInterfaceNo"`
	PayNo          string    `json:"payNo"`
	PayLogCode     string    `json:"payLogCode"`
	RequestJSON    string    `json:"requestJson"`
	ResponseJSON   string    `json:"responseJson"`
	RegistDateTime time.Time `json:"registDateTime"`
}

// GetPayLogsResponse 获取支付接口日志响应
type GetPayLogsResponse struct {
	Logs []PayLogResponse `json:"logs"`
}

// 转换函数

// ToSettlementResponse 将数据库模型转换为响应模型
func ToSettlementResponse(rec *model.SettlementRecord) SettlementResponse {
	return SettlementResponse{
		PayNo:            rec.PayNo,
		OrderNo:          rec.OrderNo,
		ClaimNo:          rec.ClaimNo,
		UpperPayNo:       rec.UpperPayNo,
		PayTypeCode:      rec.PayTypeCode,
		PayWayCode:       rec.PayWayCode,
		PayStatusCode:    rec.PayStatusCode,
		PgTypeCode:       rec.PgTypeCode,
		ApproveNo:        rec.ApproveNo,
		TrdNo:            rec.TrdNo,
		Amount:           rec.Amount,
		CancelableAmount: rec.CancelableAmount,
		PayFinishDtm:     rec.PayFinishDtm,
		RegistDateTime:   rec.RegistDateTime,
	}
}

// ToSettlementResponseList 将数据库模型列表转换为响应模型列表
func ToSettlementResponseList(records []model.SettlementRecord) []SettlementResponse {
	result := make([]SettlementResponse, len(records))
	for i, rec := range records {
		result[i] = ToSettlementResponse(&rec)
	}
	return result
}

// ToOrderRowResponse 将订单处理行数据库模型转换为响应模型
func ToOrderRowResponse(row *model.OrderChainRow) OrderRowResponse {
	return OrderRowResponse{
		OrderNo:              row.OrderNo,
		OrderSequence:        row.OrderSequence,
		ProcessSequence:      row.ProcessSequence,
		UpperProcessSequence: row.UpperProcessSequence,
		ClaimNo:              row.ClaimNo,
		GoodsNo:              row.GoodsNo,
		ItemNo:               row.ItemNo,
		GoodsName:            row.GoodsName,
		Quantity:             row.Quantity,
		SalePrice:            row.SalePrice,
		OrderTypeCode:        row.OrderTypeCode,
		OrderStatusCode:      row.OrderStatusCode,
		OrderAcceptDtm:       row.OrderAcceptDtm,
	}
}

// ToOrderRowResponseList 将订单处理行数据库模型列表转换为响应模型列表
func ToOrderRowResponseList(rows []model.OrderChainRow) []OrderRowResponse {
	result := make([]OrderRowResponse, len(rows))
	for i, row := range rows {
		result[i] = ToOrderRowResponse(&row)
	}
	return result
}

// ToPointLotResponse 将积分记录数据库模型转换为响应模型
func ToPointLotResponse(lot *model.PointLot) PointLotResponse {
	return PointLotResponse{
		PointHistoryNo:      lot.PointHistoryNo,
		Amount:              lot.Amount,
		RemainPoint:         lot.RemainPoint,
		PointTxnCode:        lot.PointTxnCode,
		PointReasonCode:     lot.PointReasonCode,
		PointReasonNo:       lot.PointReasonNo,
		UpperPointHistoryNo: lot.UpperPointHistoryNo,
		StartDateTime:       lot.StartDateTime,
		EndDateTime:         lot.EndDateTime,
	}
}

// ToPointLotResponseList 将积分记录数据库模型列表转换为响应模型列表
func ToPointLotResponseList(lots []model.PointLot) []PointLotResponse {
	result := make([]PointLotResponse, len(lots))
	for i, lot := range lots {
		result[i] = ToPointLotResponse(&lot)
	}
	return result
}

// ToPayLogResponse 将支付接口日志数据库模型转换为响应模型
func ToPayLogResponse(l *model.PayInterfaceLog) PayLogResponse {
	return PayLogResponse{
		PayInterfaceNo: l.PayInterfaceNo,
		PayNo:          l.PayNo,
		PayLogCode:     l.PayLogCode,
		RequestJSON:    l.RequestJSON,
		ResponseJSON:   l.ResponseJSON,
		RegistDateTime: l.RegistDateTime,
	}
}

// ToPayLogResponseList 将支付接口日志数据库模型列表转换为响应模型列表
func ToPayLogResponseList(logs []model.PayInterfaceLog) []PayLogResponse {
	result := make([]PayLogResponse, len(logs))
	for i, l := range logs {
		result[i] = ToPayLogResponse(&l)
	}
	return result
}
