package webhook

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/finalyzer/support/backend/internal/service/reply"
)

var (
	ErrEmptyBody     = errors.New("empty response body")
	ErrMalformedBody = errors.New("response body is not valid JSON")
	ErrNoReplyField  = errors.New("response has no reply or output text")
)

// replyFields are checked in priority order.
var replyFields = []string{"reply", "output"}

// Extract pulls the reply text out of a raw webhook body. The body is never
// assumed to be JSON.
func Extract(body []byte) reply.Result {
	if strings.TrimSpace(string(body)) == "" {
		return reply.Reject(reply.FallbackText, ErrEmptyBody)
	}
	if !gjson.ValidBytes(body) {
		return reply.Reject(reply.FallbackText, ErrMalformedBody)
	}

	for _, field := range replyFields {
		value := gjson.GetBytes(body, field)
		if value.Type == gjson.String && value.Str != "" {
			return reply.Accept(value.Str)
		}
	}
	return reply.Reject(reply.FallbackText, ErrNoReplyField)
}
