// Package notify delivers the one-time publication alert.
package notify

import (
	"context"
	"fmt"
)

// Message is one outbound alert.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Notifier delivers a message over some transport. Implementations report
// failure via the returned error; the caller decides what a failed send
// means for the run.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

const bodyTemplate = `%s %s Proceedings Are Now Available!

Conference: %s
Year: %s

Proceedings URL: %s

Detected Entry:
%s

---
This is an automated notification from the proceedings monitoring agent.
`

// BuildBody interpolates the target URL and the matched entry text into the
// fixed alert template.
func BuildBody(keyword, year, targetURL, entryText string) string {
	return fmt.Sprintf(bodyTemplate, keyword, year, keyword, year, targetURL, entryText)
}
