package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phj1120/vibe-pay-sub000/internal/logic"
	"github.com/phj1120/vibe-pay-sub000/internal/rail"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	orderLogic *logic.OrderLogic
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(orderLogic *logic.OrderLogic) *OrderHandler {
	return &OrderHandler{
		orderLogic: orderLogic,
	}
}

// CreateOrder 创建订单（多渠道结算）
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req logic.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	if err := h.orderLogic.CreateOrder(c.Request.Context(), req); err != nil {
		var failed *logic.SettlementFailedError
		switch {
		case errors.Is(err, logic.ErrInvalidOrder):
			ErrorResponse(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &failed):
			if errors.Is(err, rail.ErrRejected) {
				ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
				return
			}
			ErrorResponse(c, http.StatusBadGateway, err.Error())
		default:
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建订单成功", gin.H{"orderNo": req.OrderNo})
}

// GetOrder 获取订单处理链
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if orderNo == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的订单号")
		return
	}

	rows, err := h.orderLogic.GetOrder(orderNo)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		ErrorResponse(c, http.StatusNotFound, "订单不存在")
		return
	}

	SuccessResponse(c, http.StatusOK, "获取订单成功", GetOrderResponse{
		Rows: ToOrderRowResponseList(rows),
	})
}

// ListOrders 分页获取会员订单
func (h *OrderHandler) ListOrders(c *gin.Context) {
	memberNo := c.Query("member_no")
	if memberNo == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的会员号")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	rows, total, err := h.orderLogic.GetOrdersByMember(memberNo, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取订单列表成功", ListOrdersResponse{
		Rows:       ToOrderRowResponseList(rows),
		Pagination: pagination,
	})
}

// GenerateOrderNumber 预先发放订单号
func (h *OrderHandler) GenerateOrderNumber(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "生成订单号成功", gin.H{"orderNo": h.orderLogic.NewOrderNumber()})
}

// GetOrderSettlements 获取订单结算记录
func (h *OrderHandler) GetOrderSettlements(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if orderNo == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的订单号")
		return
	}

	records, err := h.orderLogic.GetSettlements(orderNo)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取订单结算记录成功", GetSettlementsResponse{
		Settlements: ToSettlementResponseList(records),
	})
}
