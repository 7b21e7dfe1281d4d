package server

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Its-donkey/armada-console/internal/ui/guard"
	"github.com/Its-donkey/armada-console/internal/ui/model"
	"github.com/Its-donkey/armada-console/logging"
)

func applyDefaults(opts Options) Options {
	if strings.TrimSpace(opts.Listen) == "" {
		opts.Listen = "127.0.0.1:4173"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.IdentityCookie == "" {
		opts.IdentityCookie = guard.DefaultCookieName
	}
	if opts.SessionCookie == "" {
		opts.SessionCookie = defaultSessionCookie
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SiteName == "" {
		opts.SiteName = "Armada Console"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return opts
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// redirectWith sends the browser to target carrying an optional flash message or error.
func redirectWith(w http.ResponseWriter, r *http.Request, target, msg, errMsg string) {
	values := url.Values{}
	if strings.TrimSpace(msg) != "" {
		values.Set("msg", msg)
	}
	if strings.TrimSpace(errMsg) != "" {
		values.Set("err", errMsg)
	}
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isSecureRequest(r *http.Request) bool {
	return r != nil && (r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"))
}

var eventStatusLabels = map[model.EventStatus]string{
	model.EventCreated:   "Created",
	model.EventAnnounced: "Announced",
	model.EventLive:      "Live",
	model.EventFinished:  "Finished",
	model.EventCancelled: "Cancelled",
}

func statusLabel(status model.EventStatus) string {
	if label, ok := eventStatusLabels[status]; ok {
		return label
	}
	return "Unknown"
}

func statusClass(status model.EventStatus) string {
	switch status {
	case model.EventLive:
		return "status-live"
	case model.EventFinished, model.EventCancelled:
		return "status-closed"
	default:
		return "status-pending"
	}
}

// parsePositions reads "pilot=2, gunner=4" into positions in entry order.
func parsePositions(raw string) ([]model.Position, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	seen := make(map[string]struct{})
	var positions []model.Position
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, false
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil || n < 0 {
			return nil, false
		}
		if _, dup := seen[key]; dup {
			return nil, false
		}
		seen[key] = struct{}{}
		positions = append(positions, model.Position{Key: key, Value: int32(n)})
	}
	return positions, true
}

// positionSummary renders positions alphabetically for display.
func positionSummary(positions []model.Position) string {
	if len(positions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(positions))
	for _, p := range positions {
		parts = append(parts, fmt.Sprintf("%s ×%d", p.Key, p.Value))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
