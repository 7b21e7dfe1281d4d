package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

type loginRequest struct {
	Code string `json:"code"`
}

// Login exchanges an OAuth code for the admin identity. It does not touch the
// store; persisting the session is the login flow's job.
func (c *Client) Login(ctx context.Context, code string) Result[model.Identity] {
	const op = "login"
	code = strings.TrimSpace(code)
	if code == "" {
		return Fail[model.Identity](fmt.Errorf("%w: login code is required", ErrRequest))
	}
	body, _, err := c.do(ctx, op, http.MethodPost, "/login", loginRequest{Code: code})
	if err != nil {
		return Fail[model.Identity](err)
	}
	raw, ok := envelope(body, "user", true)
	if !ok {
		return Fail[model.Identity](decodeErr(op, errors.New("unexpected response shape")))
	}
	var identity model.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return Fail[model.Identity](decodeErr(op, err))
	}
	if identity.IsZero() {
		return Fail[model.Identity](decodeErr(op, errors.New("identity has no id")))
	}
	return Ok(identity)
}
