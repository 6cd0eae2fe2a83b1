// Package middleware provides gin middleware shared by every route.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basic_authn/internal/feature/auth/domain"
)

// MsgInternalError is the only message exposed for failures outside the mapping table.
const MsgInternalError = "Internal Server Error"

// Routing failures recorded by the router's fallback handlers.
var (
	ErrRouteNotFound    = errors.New("Not Found")
	ErrMethodNotAllowed = errors.New("Method Not Allowed")
)

// localDateTimeLayout renders a local date-time without offset, trailing zero fractions trimmed.
const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

// LocalDateTime is a wall-clock timestamp serialised as an ISO-8601 local date-time.
type LocalDateTime time.Time

// MarshalJSON implements json.Marshaler.
func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(localDateTimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *LocalDateTime) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("localDateTime: expected a JSON string")
	}
	parsed, err := time.ParseInLocation(localDateTimeLayout, string(b[1:len(b)-1]), time.Local)
	if err != nil {
		return err
	}
	*t = LocalDateTime(parsed)
	return nil
}

// ErrorBody is the uniform error response.
type ErrorBody struct {
	Path          string        `json:"path"`
	Messages      []string      `json:"messages"`
	StatusCode    int           `json:"statusCode"`
	LocalDateTime LocalDateTime `json:"localDateTime"`
}

// Resolve maps a failure to its status code and messages.
// expected is false for failures outside the mapping table; those become a 500.
func Resolve(err error) (status int, messages []string, expected bool) {
	var (
		verr *domain.ValidationError
		dup  *domain.DuplicateUserError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Messages, true
	case errors.As(err, &dup):
		return http.StatusBadRequest, []string{dup.Error()}, true
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusForbidden, []string{domain.MsgMissingCredentials}, true
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, []string{domain.MsgAuthenticationFailed}, true
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, []string{ErrRouteNotFound.Error()}, true
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, []string{ErrMethodNotAllowed.Error()}, true
	default:
		return http.StatusInternalServerError, []string{MsgInternalError}, false
	}
}

// ErrorMapper renders the last error recorded with c.Error as an ErrorBody.
// now supplies the timestamp; nil means time.Now.
// Nothing is written when the handler already produced a response.
func ErrorMapper(now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		status, messages, expected := Resolve(last.Err)
		if expected {
			slog.DebugContext(c.Request.Context(), "request rejected",
				"status", status, "path", c.Request.URL.Path, "reason", last.Err.Error())
		} else {
			slog.ErrorContext(c.Request.Context(), "unhandled error",
				"error", last.Err, "path", c.Request.URL.Path, "request_id", RequestIDFrom(c))
		}

		c.JSON(status, newErrorBody(c, status, messages, now))
	}
}

// Recovery turns a panic into a 500 ErrorBody.
func Recovery(now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic recovered",
			"panic", recovered, "path", c.Request.URL.Path, "request_id", RequestIDFrom(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			newErrorBody(c, http.StatusInternalServerError, []string{MsgInternalError}, now))
	})
}

func newErrorBody(c *gin.Context, status int, messages []string, now func() time.Time) ErrorBody {
	return ErrorBody{
		Path:          c.Request.URL.Path,
		Messages:      messages,
		StatusCode:    status,
		LocalDateTime: LocalDateTime(now()),
	}
}
