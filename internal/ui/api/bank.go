package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// GetBankBalance fetches the current bank balance. Failures are returned to the caller.
func (c *Client) GetBankBalance(ctx context.Context) Result[int64] {
	const op = "getBankBalance"
	body, _, err := c.do(ctx, op, http.MethodGet, "/bank/balance", nil)
	if err != nil {
		return Fail[int64](err)
	}
	balance := gjson.GetBytes(body, "balance")
	if balance.Type != gjson.Number {
		return Fail[int64](decodeErr(op, errors.New("missing balance")))
	}
	return Ok(balance.Int())
}

// RefreshBankBalance stores a fresh balance. Failures are logged and recorded
// in the store's error cell; the previous balance is kept.
func (c *Client) RefreshBankBalance(ctx context.Context) Result[int64] {
	res := c.GetBankBalance(ctx)
	if res.Err != nil {
		c.store.Err.Set(res.Err)
		return report[int64](ctx, c, "refreshBankBalance", res.Err, nil)
	}
	c.store.Bank.Set(res.Value)
	return res
}
