// Package judge is the automated-judging collaborator: an external service
// asked to decide whether a submitted response matches the correct answer.
// The engine treats any error as "no decision" and leaves the question for a
// human.
package judge

import (
	"context"
	"strings"
)

// Query is one (question, correct answer, submitted response) triple.
type Query struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Response string `json:"response"`
}

// Judge decides correctness for a single response. Implementations must be
// safe for concurrent use; calls carry their own deadline via ctx.
type Judge interface {
	Judge(ctx context.Context, q Query) (bool, error)
}

// Shortcut resolves responses that never need the collaborator: an empty
// response is wrong, an exact case-insensitive match is right. ok reports
// whether the response was decided locally.
func Shortcut(answer, response string) (verdict, ok bool) {
	r := strings.TrimSpace(response)
	if r == "" {
		return false, true
	}
	if strings.EqualFold(strings.TrimSpace(answer), r) {
		return true, true
	}
	return false, false
}
