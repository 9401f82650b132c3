package rail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/phj1120/vibe-pay-sub000/internal/config"
)

func nicepayTestConfig(apiURL, cancelURL string) config.PgConfig {
	return config.PgConfig{
		Mid:       "nicepay00m",
		SignKey:   "testMerchantKey",
		ApiURL:    apiURL,
		CancelURL: cancelURL,
		ReturnURL: "http://localhost/return",
	}
}

func TestNicePayApprove(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"TID":      r.PostFormValue("TID"),
			"MID":      r.PostFormValue("MID"),
			"Amt":      r.PostFormValue("Amt"),
			"SignData": r.PostFormValue("SignData"),
		}
		json.NewEncoder(w).Encode(map[string]string{
			"ResultCode": "3001",
			"ResultMsg":  "OK",
			"TID":        "NICE-TID-001",
			"AuthCode":   "AUTH001",
			"Amt":        "30000",
		})
	}))
	defer server.Close()

	g := NewNicePayGateway(nicepayTestConfig(server.URL, ""), server.Client())
	resp, err := g.Approve(context.Background(), ApproveRequest{
		OrderNo:   "ORD001",
		PayNo:     "PAY001",
		AuthToken: "NICE-AUTH-TID",
		Amount:    30000,
	})
	require.NoError(t, err)
	assert.Equal(t, "AUTH001", resp.ApproveNo)
	assert.Equal(t, "NICE-TID-001", resp.TrdNo)
	assert.Equal(t, int64(30000), resp.Amount)

	assert.Equal(t, "NICE-AUTH-TID", gotForm["TID"])
	assert.Equal(t, "nicepay00m", gotForm["MID"])
	assert.Equal(t, "30000", gotForm["Amt"])
	assert.NotEmpty(t, gotForm["SignData"])
}

func TestNicePayApproveRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"ResultCode": "3021",
			"ResultMsg":  "declined",
		})
	}))
	defer server.Close()

	g := NewNicePayGateway(nicepayTestConfig(server.URL, ""), server.Client())
	_, err := g.Approve(context.Background(), ApproveRequest{OrderNo: "ORD001", Amount: 1000})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestNicePayApproveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := NewNicePayGateway(nicepayTestConfig(server.URL, ""), server.Client())
	_, err := g.Approve(context.Background(), ApproveRequest{OrderNo: "ORD001", Amount: 1000})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNicePayCancel(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"TID":               r.PostFormValue("TID"),
			"CancelAmt":         r.PostFormValue("CancelAmt"),
			"PartialCancelCode": r.PostFormValue("PartialCancelCode"),
			"NetCancel":         r.PostFormValue("NetCancel"),
		}
		json.NewEncoder(w).Encode(map[string]string{
			"ResultCode": "2001",
			"ResultMsg":  "OK",
			"TID":        "NICE-TID-001",
			"CancelAmt":  "5000",
		})
	}))
	defer server.Close()

	g := NewNicePayGateway(nicepayTestConfig("", server.URL), server.Client())
	resp, err := g.Cancel(context.Background(), CancelRequest{
		OrderNo: "ORD001",
		TrdNo:   "NICE-TID-001",
		Amount:  5000,
		Reason:  "customer request",
		Partial: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "NICE-TID-001", resp.CancelTrdNo)

	assert.Equal(t, "NICE-TID-001", gotForm["TID"])
	assert.Equal(t, "5000", gotForm["CancelAmt"])
	assert.Equal(t, "1", gotForm["PartialCancelCode"])
	assert.Equal(t, "0", gotForm["NetCancel"])
}

func TestNicePayNetCancel(t *testing.T) {
	var gotNetCancel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotNetCancel = r.PostFormValue("NetCancel")
		json.NewEncoder(w).Encode(map[string]string{"ResultCode": "2001"})
	}))
	defer server.Close()

	g := NewNicePayGateway(nicepayTestConfig("", server.URL), server.Client())
	_, err := g.NetCancel(context.Background(), CancelRequest{OrderNo: "ORD001", TrdNo: "TID", Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, "1", gotNetCancel)
}

func TestNicePayCancelRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"ResultCode": "2002",
			"ResultMsg":  "cancel failed",
		})
	}))
	defer server.Close()

	g := NewNicePayGateway(nicepayTestConfig("", server.URL), server.Client())
	_, err := g.Cancel(context.Background(), CancelRequest{OrderNo: "ORD001", TrdNo: "TID", Amount: 1000})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestNicePayBuildInitiateForm(t *testing.T) {
	g := NewNicePayGateway(nicepayTestConfig("", ""), nil)

	form, err := g.BuildInitiateForm(InitiateRequest{
		OrderNo:   "ORD001",
		Amount:    30000,
		GoodsName: "goods",
		Buyer:     BuyerInfo{Name: "buyer", Tel: "01012345678", Email: "b@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "CARD", form["PayMethod"])
	assert.Equal(t, "nicepay00m", form["MID"])
	assert.Equal(t, "ORD001", form["Moid"])
	assert.Equal(t, "30000", form["Amt"])
	require.NotEmpty(t, form["EdiDate"])
	assert.Equal(t, sha256Hex(form["EdiDate"]+"nicepay00m"+"30000"+"testMerchantKey"), form["SignData"])
}
