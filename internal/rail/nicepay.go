package rail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/config"
	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// NicePayGateway NicePay PG网关
type NicePayGateway struct {
	cfg    config.PgConfig
	client *http.Client
}

// NewNicePayGateway 创建NicePay网关
func NewNicePayGateway(cfg config.PgConfig, client *http.Client) *NicePayGateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NicePayGateway{cfg: cfg, client: client}
}

// PgTypeCode PG公司代码
func (g *NicePayGateway) PgTypeCode() string {
	return model.PgTypeNicePay
}

// BuildInitiateForm 生成NicePay支付窗口参数
// SignData = SHA256(EdiDate+MID+Amt+MerchantKey)
func (g *NicePayGateway) BuildInitiateForm(req InitiateRequest) (map[string]string, error) {
	ediDate := time.Now().Format("20060102150405")
	amt := strconv.FormatInt(req.Amount, 10)

	form := map[string]string{
		"PayMethod":  "CARD",
		"MID":        g.cfg.Mid,
		"Moid":       req.OrderNo,
		"Amt":        amt,
		"GoodsName":  req.GoodsName,
		"BuyerName":  req.Buyer.Name,
		"BuyerTel":   req.Buyer.Tel,
		"BuyerEmail": req.Buyer.Email,
		"EdiDate":    ediDate,
		"ReturnURL":  g.cfg.ReturnURL,
		"CharSet":    "utf-8",
		"SignData":   sha256Hex(ediDate + g.cfg.Mid + amt + g.cfg.SignKey),
	}

	return form, nil
}

// nicePayApprovalResponse NicePay承认响应
type nicePayApprovalResponse struct {
	ResultCode string `json:"ResultCode"`
	ResultMsg  string `json:"ResultMsg"`
	TID        string `json:"TID"`
	AuthCode   string `json:"AuthCode"`
	Amt        string `json:"Amt"`
}

// Approve NicePay承认（信用卡成功码为3001）
func (g *NicePayGateway) Approve(ctx context.Context, req ApproveRequest) (*ApproveResponse, error) {
	logger.Info("NicePay approval started. orderNo=%s, payNo=%s", req.OrderNo, req.PayNo)

	ediDate := time.Now().Format("20060102150405")
	amt := strconv.FormatInt(req.Amount, 10)

	form := url.Values{}
	form.Set("TID", req.AuthToken)
	form.Set("MID", g.cfg.Mid)
	form.Set("Moid", req.OrderNo)
	form.Set("Amt", amt)
	form.Set("EdiDate", ediDate)
	form.Set("CharSet", "utf-8")
	form.Set("SignData", sha256Hex(req.AuthToken+g.cfg.Mid+amt+ediDate+g.cfg.SignKey))

	var resp nicePayApprovalResponse
	if err := postForm(ctx, g.client, g.cfg.ApiURL, form, &resp); err != nil {
		return nil, fmt.Errorf("nicepay approval: %w", err)
	}

	if resp.ResultCode != "3001" {
		logger.Error("NicePay approval rejected. orderNo=%s, resultCode=%s, resultMsg=%s",
			req.OrderNo, resp.ResultCode, resp.ResultMsg)
		return nil, fmt.Errorf("%w: nicepay %s %s", ErrRejected, resp.ResultCode, resp.ResultMsg)
	}

	amount := req.Amount
	if resp.Amt != "" {
		if parsed, err := strconv.ParseInt(resp.Amt, 10, 64); err == nil {
			amount = parsed
		}
	}

	logger.Info("NicePay approval completed. orderNo=%s, tid=%s", req.OrderNo, resp.TID)
	return &ApproveResponse{ApproveNo: resp.AuthCode, TrdNo: resp.TID, Amount: amount}, nil
}

// nicePayCancelResponse NicePay取消响应
type nicePayCancelResponse struct {
	ResultCode string `json:"ResultCode"`
	ResultMsg  string `json:"ResultMsg"`
	TID        string `json:"TID"`
	CancelAmt  string `json:"CancelAmt"`
}

// Cancel NicePay取消（取消成功码为2001）
func (g *NicePayGateway) Cancel(ctx context.Context, req CancelRequest) (*CancelResponse, error) {
	return g.cancel(ctx, req, "0")
}

// NetCancel NicePay网络取消
func (g *NicePayGateway) NetCancel(ctx context.Context, req CancelRequest) (*CancelResponse, error) {
	return g.cancel(ctx, req, "1")
}

func (g *NicePayGateway) cancel(ctx context.Context, req CancelRequest, netCancel string) (*CancelResponse, error) {
	logger.Info("NicePay cancel started. orderNo=%s, tid=%s, amount=%d, netCancel=%s",
		req.OrderNo, req.TrdNo, req.Amount, netCancel)

	ediDate := time.Now().Format("20060102150405")
	cancelAmt := strconv.FormatInt(req.Amount, 10)

	partialCode := "0"
	if req.Partial {
		partialCode = "1"
	}

	form := url.Values{}
	form.Set("TID", req.TrdNo)
	form.Set("MID", g.cfg.Mid)
	form.Set("Moid", req.OrderNo)
	form.Set("CancelAmt", cancelAmt)
	form.Set("CancelMsg", req.Reason)
	form.Set("PartialCancelCode", partialCode)
	form.Set("NetCancel", netCancel)
	form.Set("EdiDate", ediDate)
	form.Set("CharSet", "utf-8")
	form.Set("SignData", sha256Hex(g.cfg.Mid+cancelAmt+ediDate+g.cfg.SignKey))

	var resp nicePayCancelResponse
	if err := postForm(ctx, g.client, g.cfg.CancelURL, form, &resp); err != nil {
		return nil, fmt.Errorf("nicepay cancel: %w", err)
	}

	if resp.ResultCode != "2001" {
		logger.Error("NicePay cancel rejected. orderNo=%s, resultCode=%s, resultMsg=%s",
			req.OrderNo, resp.ResultCode, resp.ResultMsg)
		return nil, fmt.Errorf("%w: nicepay %s %s", ErrRejected, resp.ResultCode, resp.ResultMsg)
	}

	logger.Info("NicePay cancel completed. orderNo=%s, tid=%s", req.OrderNo, resp.TID)
	return &CancelResponse{CancelTrdNo: resp.TID}, nil
}
