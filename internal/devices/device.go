package devices

import (
	"net/http"
	"time"

	"github.com/collegeos/internal/keys"
	"github.com/collegeos/internal/sessions"
)

const cookieName = "session"

// Device is the browser holding a session cookie.
type Device struct {
	SessionID sessions.ID
	Expires   time.Time
}

// FromCookies opens the sealed session cookie.
func FromCookies(cookies []*http.Cookie, key *keys.Key) (*Device, bool) {
	for _, cookie := range cookies {
		if cookie.Name != cookieName {
			continue
		}
		id, err := key.OpenString(cookie.Value)
		if err != nil || id == "" {
			return nil, false
		}
		return &Device{SessionID: sessions.ID(id)}, true
	}
	return nil, false
}

func (d Device) ToCookies(key *keys.Key, secure bool) ([]*http.Cookie, error) {
	value, err := key.SealString(string(d.SessionID))
	if err != nil {
		return nil, err
	}
	return []*http.Cookie{
		{
			Name:     cookieName,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  d.Expires,
			Secure:   secure,
		},
	}, nil
}

// ExpiredCookies clear the session cookie.
func ExpiredCookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Secure:   secure,
		},
	}
}
