package assistant

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// draftPayload mirrors the JSON object the assistant is instructed to emit
// inside a fenced code block when it has extracted a complete transaction.
type draftPayload struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Message     string          `json:"message"`
}

// extractFencedJSON returns the content of the first ```json fenced block in
// the reply, or false when the reply contains no such block. Text before and
// after the fence is ignored.
func extractFencedJSON(reply string) (string, bool) {
	const open = "```json"
	start := strings.Index(reply, open)
	if start < 0 {
		return "", false
	}
	rest := reply[start+len(open):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// parseDraftPayload decodes the fenced JSON block into a payload. A reply
// with a fenced block that does not decode is treated as conversational
// rather than an error, so callers get (nil, false) in that case too.
func parseDraftPayload(reply string) (*draftPayload, bool) {
	raw, ok := extractFencedJSON(reply)
	if !ok {
		return nil, false
	}
	var payload draftPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}
