package guard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

// DefaultCookieName holds the persisted admin identity.
const DefaultCookieName = "armada_admin"

// CookieSource is anything that can look up a request cookie; *http.Request satisfies it.
type CookieSource interface {
	Cookie(name string) (*http.Cookie, error)
}

// ErrNoIdentity reports a cookie that is missing or carries no admin id.
var ErrNoIdentity = errors.New("no persisted identity")

// EncodeIdentity serializes an identity into a cookie-safe value.
func EncodeIdentity(identity model.Identity) (string, error) {
	data, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeIdentity parses a cookie value written by EncodeIdentity. Unescaped JSON is accepted too.
func DecodeIdentity(value string) (model.Identity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.Identity{}, ErrNoIdentity
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	var identity model.Identity
	if err := json.Unmarshal([]byte(value), &identity); err != nil {
		return model.Identity{}, fmt.Errorf("decode identity cookie: %w", err)
	}
	if identity.IsZero() {
		return model.Identity{}, ErrNoIdentity
	}
	return identity, nil
}

// ReadIdentity loads the persisted identity from cookies.
func ReadIdentity(cookies CookieSource, name string) (model.Identity, error) {
	if cookies == nil {
		return model.Identity{}, ErrNoIdentity
	}
	cookie, err := cookies.Cookie(name)
	if err != nil {
		return model.Identity{}, ErrNoIdentity
	}
	return DecodeIdentity(cookie.Value)
}

// IdentityCookie builds the cookie the login flow writes. The guard only reads it.
func IdentityCookie(name string, identity model.Identity, secure bool, expires time.Time) (*http.Cookie, error) {
	value, err := EncodeIdentity(identity)
	if err != nil {
		return nil, err
	}
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
	if !expires.IsZero() {
		cookie.Expires = expires
	}
	return cookie, nil
}
