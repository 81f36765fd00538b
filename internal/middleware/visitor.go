package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// VisitorCookie names the cookie that identifies a browser. Everything the
// browser would keep in local storage is stored server-side under this id.
const VisitorCookie = "finalyzer_visitor"

const visitorMaxAge = 365 * 24 * 60 * 60

type visitorKey struct{}

// Visitor attaches a visitor id to every request, issuing a new cookie when
// the current one is missing or malformed.
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(VisitorCookie); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   visitorMaxAge,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), id)))
		})
	}
}

// WithVisitor stores id in ctx.
func WithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorKey{}, id)
}

// VisitorID returns the id set by Visitor, or "" outside of it.
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey{}).(string)
	return id
}

// ProfileChecker reports whether a visitor has a stored profile.
type ProfileChecker interface {
	HasProfile(ctx context.Context, visitor string) bool
}

// RequireProfile stops visitors without a profile; onMissing decides between
// a 401 and a redirect.
func RequireProfile(checker ProfileChecker, onMissing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.HasProfile(r.Context(), VisitorID(r.Context())) {
				onMissing(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
