package httphandler

import (
	"crypto/subtle"
	"net/http"
)

// Double-submit cookie set by the web adapter when it renders the page.
const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
)

// validCSRFHeader reports whether the X-CSRF-Token header matches the
// csrf_token cookie. Both must be non-empty.
func validCSRFHeader(r *http.Request) bool {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.Header.Get(csrfHeaderName)
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) == 1
}
