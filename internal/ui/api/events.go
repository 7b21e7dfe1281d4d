package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

// GetEvents lists events ordered by start time. Failures are returned to the caller.
func (c *Client) GetEvents(ctx context.Context) Result[[]model.Event] {
	const op = "getEvents"
	body, _, err := c.do(ctx, op, http.MethodGet, "/events/", nil)
	if err != nil {
		return Fail[[]model.Event](err)
	}
	raw, ok := envelope(body, "events", true)
	if !ok {
		return Fail[[]model.Event](decodeErr(op, errors.New("unexpected response shape")))
	}
	var events []model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return Fail[[]model.Event](decodeErr(op, err))
	}
	if events == nil {
		events = []model.Event{}
	}
	model.SortEvents(events)
	return Ok(events)
}

// RefreshEvents replaces the store's event list. On failure the list becomes
// empty and the error is logged and recorded in the store's error cell.
func (c *Client) RefreshEvents(ctx context.Context) Result[[]model.Event] {
	res := c.GetEvents(ctx)
	if res.Err != nil {
		c.store.Events.Set([]model.Event{})
		c.store.Err.Set(res.Err)
		return report[[]model.Event](ctx, c, "refreshEvents", res.Err, nil)
	}
	c.store.Events.Set(res.Value)
	return res
}

// CreateEvent posts a new event and returns the backend's copy of it. The
// positions travel as a plain object; event itself is left as it was passed.
// On success the store's event list is refreshed.
func (c *Client) CreateEvent(ctx context.Context, event model.Event) Result[model.Event] {
	const op = "createEvent"
	body, _, err := c.do(ctx, op, http.MethodPost, "/events", event)
	if err != nil {
		return Fail[model.Event](err)
	}
	created, err := decodeEvent(op, body)
	if err != nil {
		return Fail[model.Event](err)
	}
	c.RefreshEvents(ctx)
	return Ok(created)
}

// UpdateEvent saves an existing event and returns the backend's copy of it.
// On success the store's event list is refreshed.
func (c *Client) UpdateEvent(ctx context.Context, event model.Event) Result[model.Event] {
	const op = "updateEvent"
	id := strings.TrimSpace(event.ID)
	if id == "" {
		return Fail[model.Event](fmt.Errorf("%w: event id is required", ErrRequest))
	}
	body, _, err := c.do(ctx, op, http.MethodPut, "/events/"+url.PathEscape(id), event)
	if err != nil {
		return Fail[model.Event](err)
	}
	updated, err := decodeEvent(op, body)
	if err != nil {
		return Fail[model.Event](err)
	}
	c.RefreshEvents(ctx)
	return Ok(updated)
}

// DeleteEvent drops the first event with id from the held list straight away,
// then asks the backend to delete it. An unset list stays unset. Backend
// failures are logged and swallowed.
func (c *Client) DeleteEvent(ctx context.Context, id string) Result[struct{}] {
	const op = "deleteEvent"
	c.store.Events.UpdateIfSet(func(events []model.Event) []model.Event {
		i := slices.IndexFunc(events, func(ev model.Event) bool { return ev.ID == id })
		if i < 0 {
			return events
		}
		return slices.Delete(slices.Clone(events), i, i+1)
	})
	if _, _, err := c.do(ctx, op, http.MethodDelete, "/events/"+url.PathEscape(id), nil); err != nil {
		return report[struct{}](ctx, c, op, err, map[string]any{"event_id": id})
	}
	return Result[struct{}]{Empty: true}
}

func decodeEvent(op string, body []byte) (model.Event, error) {
	raw, ok := envelope(body, "event", false)
	if !ok || string(raw) == "null" {
		return model.Event{}, decodeErr(op, errors.New("missing event"))
	}
	var event model.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return model.Event{}, decodeErr(op, err)
	}
	return event, nil
}
