package trading

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "trading"))
}

type SettleResponseData struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
}

type SettleResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Data    SettleResponseData `json:"data"`
}

/*
{
	"label": "liquidate",
	"payer": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
	"steps": [
		{"kind": "transfer", "from": "...", "to": "...", "amount": 1000000, "authority": "..."},
		{"kind": "execute", "instruction": {"programId": "JUP6...", "accounts": [...], "data": "..."}}
	]
}
*/

// Relay submits settlements to the transaction relay, which signs with the vault program
// and lands them as one transaction. It never retries: a failed settlement aborts the operation.
type Relay struct {
	Host    string
	Timeout time.Duration
	Client  *fasthttp.Client
}

func NewRelay(host string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Relay{Host: host, Timeout: timeout, Client: &fasthttp.Client{Name: "delegate_vault"}}
}

func (r *Relay) Request(ctx context.Context, method string, data interface{}) (interface{}, error) {
	url := "http://" + r.Host + "/" + method
	body, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := r.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := r.Client.DoTimeout(req, resp, timeout); err != nil {
		return nil, errors.Wrapf(err, "POST %s", url)
	}
	log.Debug("relay response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
	)
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, errors.Errorf("POST %s: status %d: %s", url, resp.StatusCode(), resp.Body())
	}
	var response interface{}
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return response, nil
}

func (r *Relay) Settle(ctx context.Context, settlement *models.Settlement) (string, error) {
	rawResponse, err := r.Request(ctx, "settle", settlement)
	if err != nil {
		return "", err
	}
	var response SettleResponse
	if err := mapstructure.Decode(rawResponse, &response); err != nil {
		return "", errors.Wrap(err, "decode settle response")
	}
	if response.Status != "OK" {
		return "", errors.Errorf("settlement %s rejected: %s", settlement.Label, response.Message)
	}
	log.Info("settled",
		zap.String("label", settlement.Label),
		zap.String("signature", response.Data.Signature),
		zap.Uint64("slot", response.Data.Slot),
	)
	return response.Data.Signature, nil
}
