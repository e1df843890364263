// Package assistant implements the remote LLM-backed transaction parser. It
// sends the user's utterance with a bounded slice of recent chat history to a
// chat-completion provider and interprets the reply: either conversational
// text to relay verbatim, or a fenced JSON block carrying a transaction
// draft for the confirmation workflow.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jianji/ledger-assistant/internal/dateutils"
	"jianji/ledger-assistant/internal/logging"
	"jianji/ledger-assistant/internal/models"
)

// Turn is a single prior exchange in the conversation, oldest first.
type Turn struct {
	Role    string // models.RoleUser or models.RoleAssistant
	Content string
}

// Completer abstracts the chat-completion provider so the parser can be
// tested against a fake and switched between backends via configuration.
type Completer interface {
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
}

// ReplyKind classifies what the assistant's answer means for the caller.
type ReplyKind int

const (
	// KindConversational means the reply is plain text to show the user.
	KindConversational ReplyKind = iota
	// KindDraft means the reply carried a complete transaction draft.
	KindDraft
	// KindUnavailable means the provider could not be reached; the caller
	// should fall back to the local heuristic parser.
	KindUnavailable
)

// Reply is the interpreted outcome of one assistant round trip.
type Reply struct {
	Kind    ReplyKind
	Message string
	Draft   *models.Draft
	Err     error
}

// Parser drives the assistant conversation for one ledger.
type Parser struct {
	completer     Completer
	historyWindow int
	log           logging.Logger
}

// NewParser wires a parser to a provider. historyWindow bounds how many
// trailing turns accompany each request; values below 1 are clamped to 1.
func NewParser(completer Completer, historyWindow int, log logging.Logger) *Parser {
	if historyWindow < 1 {
		historyWindow = 1
	}
	return &Parser{completer: completer, historyWindow: historyWindow, log: log}
}

// SendAndParse sends the utterance plus the trailing history window to the
// provider and interprets the reply. Transport failures never surface as
// errors to the user: they come back as KindUnavailable so the caller can
// degrade to the heuristic parser.
func (p *Parser) SendAndParse(ctx context.Context, input, person string, history []Turn, categories []models.ExpandedCategory, now time.Time) Reply {
	system := BuildSystemPrompt(categories, now)

	turns := trailingWindow(history, p.historyWindow)
	turns = append(turns, Turn{Role: models.RoleUser, Content: input})

	raw, err := p.completer.Complete(ctx, system, turns)
	if err != nil {
		p.log.WithError(err).Warn("assistant request failed, falling back to heuristic parsing")
		return Reply{Kind: KindUnavailable, Err: err}
	}

	payload, ok := parseDraftPayload(raw)
	if !ok {
		return Reply{Kind: KindConversational, Message: strings.TrimSpace(raw)}
	}

	draft, err := p.buildDraft(payload, person, categories, now)
	if err != nil {
		p.log.WithError(err).Warn("assistant returned an unusable draft, treating reply as conversational")
		return Reply{Kind: KindConversational, Message: strings.TrimSpace(raw)}
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = "已为你整理好这笔" + draft.Type.Label() + "记录，请确认。"
	}
	return Reply{Kind: KindDraft, Message: message, Draft: draft}
}

// buildDraft validates the payload and maps its category name back onto the
// ledger's stored categories. The draft keeps the original stored-record key
// so confirmation persists real identifiers, never display labels.
func (p *Parser) buildDraft(payload *draftPayload, person string, categories []models.ExpandedCategory, now time.Time) (*models.Draft, error) {
	typ := models.TransactionType(payload.Type)
	if !typ.Valid() {
		return nil, errInvalidField("type", payload.Type)
	}
	if payload.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errInvalidField("amount", payload.Amount.String())
	}

	description := strings.TrimSpace(payload.Description)
	key := ResolveCategory(payload.Category, typ, categories)

	// Item is the category display label; the description is the note. They
	// only coincide when no category resolved and the description is all we
	// have to show.
	item := key.Label
	if item == "" {
		item = description
	}
	if item == "" {
		item = typ.Label()
	}

	return &models.Draft{
		Type:     typ,
		Date:     dateutils.ValidateAssistantDate(payload.Date, now),
		Item:     item,
		Amount:   payload.Amount,
		Person:   person,
		Note:     description,
		Category: key,
	}, nil
}

// ResolveCategory maps the name the model chose onto a same-type expanded
// category. Matching is bidirectional containment so "餐饮美食" still finds
// "餐饮" and vice versa; no match leaves the key zero and the confirmation
// workflow forces a manual pick.
func ResolveCategory(name string, typ models.TransactionType, categories []models.ExpandedCategory) models.CategoryKey {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CategoryKey{}
	}
	for _, cat := range categories {
		if cat.Type != typ {
			continue
		}
		if strings.Contains(cat.Name, name) || strings.Contains(name, cat.Name) {
			return cat.Key
		}
	}
	return models.CategoryKey{}
}

// trailingWindow returns the last n turns of history without mutating the
// caller's slice.
func trailingWindow(history []Turn, n int) []Turn {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]Turn, 0, len(history)+1)
	return append(out, history...)
}

type fieldError struct {
	field string
	value string
}

func errInvalidField(field, value string) error {
	return &fieldError{field: field, value: value}
}

func (e *fieldError) Error() string {
	return "assistant payload has invalid " + e.field + ": " + e.value
}
