package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phj1120/vibe-pay-sub000/internal/logic"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// PointHandler 积分处理器
type PointHandler struct {
	pointLogic *logic.PointLogic
}

// NewPointHandler 创建积分处理器
func NewPointHandler(pointLogic *logic.PointLogic) *PointHandler {
	return &PointHandler{
		pointLogic: pointLogic,
	}
}

// CreditPointRequest 积分发放请求
type CreditPointRequest struct {
	MemberNo string `json:"memberNo" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
}

// CreditPoint 发放积分
func (h *PointHandler) CreditPoint(c *gin.Context) {
	var req CreditPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	historyNo, err := h.pointLogic.Credit(req.MemberNo, req.Amount, model.PointReasonEtc, "")
	if err != nil {
		if errors.Is(err, logic.ErrInvalidAmount) {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "发放积分成功", CreditPointResponse{PointHistoryNo: historyNo})
}

// GetBalance 获取积分余额
func (h *PointHandler) GetBalance(c *gin.Context) {
	memberNo := c.Param("memberNo")
	if memberNo == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的会员号")
		return
	}

	balance, err := h.pointLogic.Balance(memberNo)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取积分余额成功", GetPointBalanceResponse{
		MemberNo: memberNo,
		Balance:  balance,
	})
}

// GetHistory 获取积分记录
func (h *PointHandler) GetHistory(c *gin.Context) {
	memberNo := c.Param("memberNo")
	if memberNo == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的会员号")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	history, total, err := h.pointLogic.History(memberNo, page, pageSize)
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

	SuccessResponse(c, http.StatusOK, "获取积分记录成功", GetPointHistoryResponse{
		History:    ToPointLotResponseList(history),
		Pagination: pagination,
	})
}

// SignupRequest 会员注册请求
type SignupRequest struct {
	MemberNo string `json:"memberNo" binding:"required"`
}

// Signup 会员注册（初始化零积分账本）
func (h *PointHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	historyNo, err := h.pointLogic.GrantSignupLot(req.MemberNo)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "会员注册成功", CreditPointResponse{PointHistoryNo: historyNo})
}
