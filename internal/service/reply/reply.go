// Package reply defines the outcome of asking a backend for an answer.
package reply

import (
	"context"

	"github.com/finalyzer/support/backend/internal/model/profile"
)

const (
	// FallbackText replaces replies that arrived but carried no usable text.
	FallbackText = "I apologize, but I couldn't process your request."
	// ConnectivityText replaces replies that never arrived.
	ConnectivityText = "I'm sorry, but I couldn't connect to the server. Please try again."
)

// Status tags a Result.
type Status string

const (
	Accepted Status = "accepted"
	Rejected Status = "rejected"
)

// Result always carries displayable Text; Reason explains a rejection.
type Result struct {
	Status Status
	Text   string
	Reason error
}

// Accept wraps text extracted from a backend response.
func Accept(text string) Result {
	return Result{Status: Accepted, Text: text}
}

// Reject substitutes the fixed text for an unusable response.
func Reject(text string, reason error) Result {
	return Result{Status: Rejected, Text: text, Reason: reason}
}

// Accepted reports whether the backend produced the text.
func (r Result) Accepted() bool {
	return r.Status == Accepted
}

// Replier produces the AI answer for one user message. Implementations
// recover from their own failures and never return an error.
type Replier interface {
	Reply(ctx context.Context, text string, p *profile.UserProfile) Result
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, text string, p *profile.UserProfile) Result

func (f ReplierFunc) Reply(ctx context.Context, text string, p *profile.UserProfile) Result {
	return f(ctx, text, p)
}
