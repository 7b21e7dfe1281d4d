package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

// GetUser fetches one user. Failures are logged and the result carries no value.
func (c *Client) GetUser(ctx context.Context, id string) Result[model.User] {
	const op = "getUser"
	id = strings.TrimSpace(id)
	fields := map[string]any{"user_id": id}
	if id == "" {
		return report[model.User](ctx, c, op, fmt.Errorf("%w: user id is required", ErrRequest), fields)
	}
	body, _, err := c.do(ctx, op, http.MethodGet, "/users/"+url.PathEscape(id), nil)
	if err != nil {
		return report[model.User](ctx, c, op, err, fields)
	}
	raw, ok := envelope(body, "user", true)
	if !ok {
		return report[model.User](ctx, c, op, decodeErr(op, errors.New("unexpected response shape")), fields)
	}
	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return report[model.User](ctx, c, op, decodeErr(op, err), fields)
	}
	return Ok(user)
}

type updateUserRequest struct {
	User model.User `json:"user"`
}

// UpdateUser saves a user. Failures are logged and swallowed; when the backend
// echoes the user back it is returned.
func (c *Client) UpdateUser(ctx context.Context, user model.User) Result[model.User] {
	const op = "updateUser"
	fields := map[string]any{"user_id": user.ID}
	if strings.TrimSpace(user.ID) == "" {
		return report[model.User](ctx, c, op, fmt.Errorf("%w: user id is required", ErrRequest), fields)
	}
	body, _, err := c.do(ctx, op, http.MethodPut, "/users/"+url.PathEscape(user.ID), updateUserRequest{User: user})
	if err != nil {
		return report[model.User](ctx, c, op, err, fields)
	}
	raw, ok := envelope(body, "user", false)
	if !ok || string(raw) == "null" {
		return Result[model.User]{Empty: true}
	}
	var echoed model.User
	if err := json.Unmarshal(raw, &echoed); err != nil {
		return report[model.User](ctx, c, op, decodeErr(op, err), fields)
	}
	return Ok(echoed)
}

// GetUsers lists every user ordered by rank, then case-insensitive name.
// Failures are returned to the caller.
func (c *Client) GetUsers(ctx context.Context) Result[[]model.User] {
	const op = "getUsers"
	body, _, err := c.do(ctx, op, http.MethodGet, "/users/", nil)
	if err != nil {
		return Fail[[]model.User](err)
	}
	users, err := decodeUsers(op, body)
	if err != nil {
		return Fail[[]model.User](err)
	}
	model.SortUsers(users)
	return Ok(users)
}

// RefreshUsers replaces the store's user list. On failure the list becomes
// empty and the error is logged and recorded in the store's error cell.
func (c *Client) RefreshUsers(ctx context.Context) Result[[]model.User] {
	res := c.GetUsers(ctx)
	if res.Err != nil {
		c.store.Users.Set([]model.User{})
		c.store.Err.Set(res.Err)
		return report[[]model.User](ctx, c, "refreshUsers", res.Err, nil)
	}
	c.store.Users.Set(res.Value)
	return res
}

// GetRandomNames asks the backend for up to max random users at or below
// rankLimit and joins their names into a bulleted list.
//
// With max <= 0 or no rank limit the call never settles on its own: it waits
// for ctx to end and returns the context's error.
func (c *Client) GetRandomNames(ctx context.Context, max, rankLimit int) Result[string] {
	const op = "getRandomNames"
	if max <= 0 || rankLimit <= 0 {
		<-ctx.Done()
		return Fail[string](ctx.Err())
	}
	query := url.Values{}
	query.Set("max", strconv.Itoa(max))
	query.Set("rank_limit", strconv.Itoa(rankLimit))
	body, _, err := c.do(ctx, op, http.MethodGet, "/users/random?"+query.Encode(), nil)
	if err != nil {
		return Fail[string](err)
	}
	users, err := decodeUsers(op, body)
	if err != nil {
		return Fail[string](err)
	}
	lines := make([]string, 0, len(users))
	for _, u := range users {
		lines = append(lines, "- "+u.Name)
	}
	return Ok(strings.Join(lines, "\n"))
}

func decodeUsers(op string, body []byte) ([]model.User, error) {
	raw, ok := envelope(body, "users", false)
	if !ok {
		return nil, decodeErr(op, errors.New("missing users"))
	}
	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, decodeErr(op, err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
