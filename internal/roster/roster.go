package roster

import (
	"strings"
)

// Recipient is one row of a programme roster: the community a greeting is
// recorded for, optionally narrowed to a group and the agent serving it.
type Recipient struct {
	ID        string `json:"id,omitempty"`
	Community string `json:"community"`
	Group     string `json:"group,omitempty"`
	Agent     string `json:"agent,omitempty"`
}

// Key joins the non-empty name parts with a single space.
func (r Recipient) Key() string {
	parts := make([]string, 0, 3)

	for _, p := range []string{r.Community, r.Group, r.Agent} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}

// ContainsText reports whether any name part contains text, ignoring case.
func (r Recipient) ContainsText(text string) bool {
	text = strings.ToLower(text)

	for _, p := range []string{r.Community, r.Group, r.Agent} {
		if strings.Contains(strings.ToLower(p), text) {
			return true
		}
	}

	return false
}
