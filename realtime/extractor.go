package realtime

import (
	"net/http"
	"strings"
)

// CredentialExtractor pulls a bearer credential out of one location of the
// upgrade request, returning "" when that location is empty.
type CredentialExtractor func(r *http.Request) string

// FromAuthQuery reads the explicit handshake auth value, carried as a query
// parameter on the upgrade URL.
func FromAuthQuery(param string) CredentialExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(param)
	}
}

// FromBearerHeader reads a standard "Authorization: Bearer <token>" header.
func FromBearerHeader() CredentialExtractor {
	return func(r *http.Request) string {
		header := r.Header.Get("Authorization")
		if header == "" {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
}

// FromCookie reads the token cookie set at login.
func FromCookie(name string) CredentialExtractor {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// DefaultExtractors is the handshake lookup order: explicit auth value,
// then Authorization header, then cookie. First non-empty source wins and
// the rest are ignored.
func DefaultExtractors(cookieName string) []CredentialExtractor {
	return []CredentialExtractor{
		FromAuthQuery("auth_token"),
		FromBearerHeader(),
		FromCookie(cookieName),
	}
}

// ExtractCredential tries each extractor in order and returns the first
// non-empty value found, or "" when no source carries a credential.
func ExtractCredential(r *http.Request, extractors []CredentialExtractor) string {
	for _, extract := range extractors {
		if token := extract(r); token != "" {
			return token
		}
	}
	return ""
}
