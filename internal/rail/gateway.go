package rail

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Gateway 卡PG公司接口（承认/取消/网络取消）
type Gateway interface {
	// PgTypeCode PG公司代码
	PgTypeCode() string
	// BuildInitiateForm 生成支付窗口表单参数
	BuildInitiateForm(req InitiateRequest) (map[string]string, error)
	// Approve 承认（实际扣款）
	Approve(ctx context.Context, req ApproveRequest) (*ApproveResponse, error)
	// Cancel 客户取消（部分或全额退款）
	Cancel(ctx context.Context, req CancelRequest) (*CancelResponse, error)
	// NetCancel 网络取消（本地事务失败时的补偿撤销）
	NetCancel(ctx context.Context, req CancelRequest) (*CancelResponse, error)
}

// ApproveRequest PG承认请求
type ApproveRequest struct {
	OrderNo   string `json:"order_no"`
	PayNo     string `json:"pay_no"`
	AuthToken string `json:"auth_token"`
	Amount    int64  `json:"amount"`
}

// ApproveResponse PG承认响应
type ApproveResponse struct {
	ApproveNo string `json:"approve_no"`
	TrdNo     string `json:"trd_no"`
	Amount    int64  `json:"amount"`
}

// CancelRequest PG取消请求
type CancelRequest struct {
	OrderNo string `json:"order_no"`
	TrdNo   string `json:"trd_no"`
	Amount  int64  `json:"amount"`
	Reason  string `json:"reason"`
	Partial bool   `json:"partial"`
}

// CancelResponse PG取消响应
type CancelResponse struct {
	CancelTrdNo string `json:"cancel_trd_no,omitempty"`
}

// sha256Hex SHA-256十六进制摘要
func sha256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// sha512Hex SHA-512十六进制摘要
func sha512Hex(text string) string {
	sum := sha512.Sum512([]byte(text))
	return hex.EncodeToString(sum[:])
}

// postForm 发送表单请求并解析JSON响应
// 网络错误与5xx归类为 ErrUnavailable
func postForm(ctx context.Context, client *http.Client, rawURL string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return doRequest(client, req, out)
}

// postJSON 发送JSON请求并解析JSON响应
func postJSON(ctx context.Context, client *http.Client, rawURL string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return doRequest(client, req, out)
}

func doRequest(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		// 超时或连接失败，结果不明，不得盲目重试
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: http status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http status %d", ErrRejected, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}
