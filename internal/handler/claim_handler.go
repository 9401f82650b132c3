package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phj1120/vibe-pay-sub000/internal/logic"
)

// ClaimHandler 取消处理器
type ClaimHandler struct {
	claimLogic *logic.ClaimLogic
}

// NewClaimHandler 创建取消处理器
func NewClaimHandler(claimLogic *logic.ClaimLogic) *ClaimHandler {
	return &ClaimHandler{
		claimLogic: claimLogic,
	}
}

// CancelOrder 取消订单行（分摊退款）
func (h *ClaimHandler) CancelOrder(c *gin.Context) {
	var req logic.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	claimNo, err := h.claimLogic.CancelOrder(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, logic.ErrInvalidClaimTarget):
			ErrorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, logic.ErrAlreadyCancelled):
			ErrorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, logic.ErrInsufficientRefundable):
			ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		default:
			ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "取消订单成功", CancelOrderResponse{ClaimNo: claimNo})
}
