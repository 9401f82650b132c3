package rail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/config"
	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// InicisGateway Inicis PG网关
type InicisGateway struct {
	cfg    config.PgConfig
	client *http.Client
}

// NewInicisGateway 创建Inicis网关
func NewInicisGateway(cfg config.PgConfig, client *http.Client) *InicisGateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &InicisGateway{cfg: cfg, client: client}
}

// PgTypeCode PG公司代码
func (g *InicisGateway) PgTypeCode() string {
	return model.PgTypeInicis
}

// BuildInitiateForm 生成Inicis支付窗口参数
// signature = SHA256(oid+price+timestamp)，verification 额外拼入 signKey
func (g *InicisGateway) BuildInitiateForm(req InitiateRequest) (map[string]string, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	price := strconv.FormatInt(req.Amount, 10)

	form := map[string]string{
		"mid":          g.cfg.Mid,
		"oid":          req.OrderNo,
		"price":        price,
		"timestamp":    timestamp,
		"mKey":         sha256Hex(g.cfg.SignKey),
		"version":      "1.0",
		"currency":     "WON",
		"goodname":     req.GoodsName,
		"buyername":    req.Buyer.Name,
		"buyertel":     req.Buyer.Tel,
		"buyeremail":   req.Buyer.Email,
		"returnUrl":    g.cfg.ReturnURL,
		"closeUrl":     g.cfg.CloseURL,
		"gopaymethod":  "Card",
		"acceptmethod": "below1000",
		"charset":      "UTF-8",
	}

	form["signature"] = sha256Hex(fmt.Sprintf("oid=%s&price=%s&timestamp=%s", req.OrderNo, price, timestamp))
	form["verification"] = sha256Hex(fmt.Sprintf("oid=%s&price=%s&signKey=%s&timestamp=%s",
		req.OrderNo, price, g.cfg.SignKey, timestamp))

	return form, nil
}

// inicisApprovalResponse Inicis承认响应
type inicisApprovalResponse struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
	Tid        string `json:"tid"`
	ApplNum    string `json:"applNum"`
	TotPrice   string `json:"TotPrice"`
}

// Approve Inicis承认
func (g *InicisGateway) Approve(ctx context.Context, req ApproveRequest) (*ApproveResponse, error) {
	logger.Info("Inicis approval started. orderNo=%s, payNo=%s", req.OrderNo, req.PayNo)

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	form := url.Values{}
	form.Set("mid", g.cfg.Mid)
	form.Set("authToken", req.AuthToken)
	form.Set("timestamp", timestamp)
	form.Set("signature", sha256Hex(fmt.Sprintf("authToken=%s&timestamp=%s", req.AuthToken, timestamp)))
	form.Set("verification", sha256Hex(fmt.Sprintf("authToken=%s&signKey=%s&timestamp=%s",
		req.AuthToken, g.cfg.SignKey, timestamp)))
	form.Set("charset", "UTF-8")
	form.Set("format", "JSON")
	form.Set("price", strconv.FormatInt(req.Amount, 10))

	var resp inicisApprovalResponse
	if err := postForm(ctx, g.client, g.cfg.ApiURL, form, &resp); err != nil {
		return nil, fmt.Errorf("inicis approval: %w", err)
	}

	if resp.ResultCode != "0000" {
		logger.Error("Inicis approval rejected. orderNo=%s, resultCode=%s, resultMsg=%s",
			req.OrderNo, resp.ResultCode, resp.ResultMsg)
		return nil, fmt.Errorf("%w: inicis %s %s", ErrRejected, resp.ResultCode, resp.ResultMsg)
	}

	amount := req.Amount
	if resp.TotPrice != "" {
		if parsed, err := strconv.ParseInt(resp.TotPrice, 10, 64); err == nil {
			amount = parsed
		}
	}

	logger.Info("Inicis approval completed. orderNo=%s, tid=%s", req.OrderNo, resp.Tid)
	return &ApproveResponse{ApproveNo: resp.ApplNum, TrdNo: resp.Tid, Amount: amount}, nil
}

// inicisCancelResponse Inicis取消响应
type inicisCancelResponse struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
	CancelTid  string `json:"cancelTid"`
}

// Cancel Inicis取消（退款）
func (g *InicisGateway) Cancel(ctx context.Context, req CancelRequest) (*CancelResponse, error) {
	return g.cancel(ctx, req, "refund")
}

// NetCancel Inicis网络取消
func (g *InicisGateway) NetCancel(ctx context.Context, req CancelRequest) (*CancelResponse, error) {
	return g.cancel(ctx, req, "netCancel")
}

// cancel hashData = SHA512(apiKey+mid+type+timestamp+dataJSON)
func (g *InicisGateway) cancel(ctx context.Context, req CancelRequest, cancelType string) (*CancelResponse, error) {
	logger.Info("Inicis %s started. orderNo=%s, tid=%s, amount=%d", cancelType, req.OrderNo, req.TrdNo, req.Amount)

	timestamp := time.Now().Format("20060102150405")

	data := map[string]string{
		"tid": req.TrdNo,
		"msg": req.Reason,
	}
	if req.Partial {
		data["price"] = strconv.FormatInt(req.Amount, 10)
		data["confirmPrice"] = "1"
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal cancel data: %w", err)
	}

	body := map[string]interface{}{
		"mid":       g.cfg.Mid,
		"type":      cancelType,
		"timestamp": timestamp,
		"clientIp":  "127.0.0.1",
		"hashData":  sha512Hex(g.cfg.ApiKey + g.cfg.Mid + cancelType + timestamp + string(dataJSON)),
		"data":      data,
	}

	var resp inicisCancelResponse
	if err := postJSON(ctx, g.client, g.cfg.CancelURL, body, &resp); err != nil {
		return nil, fmt.Errorf("inicis %s: %w", cancelType, err)
	}

	if resp.ResultCode != "00" {
		logger.Error("Inicis %s rejected. orderNo=%s, resultCode=%s, resultMsg=%s",
			cancelType, req.OrderNo, resp.ResultCode, resp.ResultMsg)
		return nil, fmt.Errorf("%w: inicis %s %s", ErrRejected, resp.ResultCode, resp.ResultMsg)
	}

	logger.Info("Inicis %s completed. orderNo=%s, tid=%s", cancelType, req.OrderNo, req.TrdNo)
	return &CancelResponse{CancelTrdNo: resp.CancelTid}, nil
}
