package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phj1120/vibe-pay-sub000/internal/logic"
	"github.com/phj1120/vibe-pay-sub000/internal/rail"
)

// PaymentHandler 支付发起处理器
type PaymentHandler struct {
	orderLogic  *logic.OrderLogic
	paylogLogic *logic.PayLogLogic
}

// NewPaymentHandler 创建支付发起处理器
func NewPaymentHandler(orderLogic *logic.OrderLogic, paylogLogic *logic.PayLogLogic) *PaymentHandler {
	return &PaymentHandler{
		orderLogic:  orderLogic,
		paylogLogic: paylogLogic,
	}
}

// InitiatePaymentRequest 支付发起请求
type InitiatePaymentRequest struct {
	PayWayCode string         `json:"payWayCode" binding:"required"`
	OrderNo    string         `json:"orderNo" binding:"required"`
	MemberNo   string         `json:"memberNo" binding:"required"`
	Amount     int64          `json:"amount" binding:"required"`
	GoodsName  string         `json:"goodsName"`
	Buyer      rail.BuyerInfo `json:"buyer"`
}

// InitiatePayment 支付发起：卡渠道返回PG支付窗口参数，积分渠道校验余额
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	resp, err := h.orderLogic.InitiatePayment(c.Request.Context(), req.PayWayCode, rail.InitiateRequest{
		OrderNo:   req.OrderNo,
		MemberNo:  req.MemberNo,
		Amount:    req.Amount,
		GoodsName: req.GoodsName,
		Buyer:     req.Buyer,
	})
	if err != nil {
		switch {
		case errors.Is(err, rail.ErrUnsupportedPayWay), errors.Is(err, logic.ErrInvalidOrder):
			ErrorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, rail.ErrRejected):
			ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, rail.ErrUnavailable):
			ErrorResponse(c, http.StatusBadGateway, err.Error())
		default:
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "支付发起成功", resp)
}

// GetPayLogs 获取结算编号的接口日志
func (h *PaymentHandler) GetPayLogs(c *gin.Context) {
	payNo := c.Param("payNo")
	if payNo == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的结算编号")
		return
	}

	logs, err := h.paylogLogic.ListByPayNo(payNo)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取支付接口日志成功", GetPayLogsResponse{
		Logs: ToPayLogResponseList(logs),
	})
}
