package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"jianji/ledger-assistant/internal/assistant"
	"jianji/ledger-assistant/internal/heuristic"
	"jianji/ledger-assistant/internal/logging"
	"jianji/ledger-assistant/internal/models"
)

// ErrSendInFlight rejects a new send while an earlier one has not settled.
// Requests are never pipelined; reply order matches send order.
var ErrSendInFlight = errors.New("a message is already being processed")

// ErrNoRecordPermission rejects sends from members whose permission level
// does not allow adding transactions.
var ErrNoRecordPermission = errors.New("user may not record transactions in this ledger")

// User-facing fallback texts.
const (
	apologyMessage   = "抱歉，智能助手暂时不可用，请稍后再试，或直接描述金额让我帮你记录。"
	rephraseMessage  = "我没有找到金额，请换个说法，比如：今天吃饭花了50块"
	noCategoryNotice = "（提示：当前账本缺少对应类型的分类，确认前请先添加）"
)

// ChatStore is the persistence surface the session needs.
type ChatStore interface {
	TransactionCreator
	RecentChatLogs(ctx context.Context, ledgerID string, n int) ([]models.ChatLog, error)
	MemberPermission(ctx context.Context, ledgerID, userID string) (models.Permission, error)
}

// Message is a transcript entry as the interface layer displays it. Pending
// marks the interim placeholder shown while a remote parse is outstanding;
// its ID is the correlation token the reply reconciles against.
type Message struct {
	ID      string
	Role    string
	Content string
	Pending bool
}

// Outcome is the settled result of one Send.
type Outcome struct {
	// Reply is the assistant text appended to the transcript.
	Reply string
	// Workflow is non-nil when a parser produced a tentative transaction
	// awaiting confirmation.
	Workflow *Workflow
}

// Session runs the conversational flow for one user on one ledger. Methods
// are meant to be called from a single goroutine; the in-flight guard exists
// to serialize sends, not to make the session concurrent.
type Session struct {
	store      ChatStore
	parser     *assistant.Parser // nil when the remote assistant is disabled
	ledgerID   string
	user       models.User
	historyLen int
	log        logging.Logger
	now        func() time.Time

	transcript []Message
	inFlight   bool
}

// NewSession builds a session. parser may be nil to run heuristic-only.
func NewSession(store ChatStore, parser *assistant.Parser, ledgerID string, user models.User, historyLen int, log logging.Logger) *Session {
	if historyLen < 1 {
		historyLen = 1
	}
	return &Session{
		store:      store,
		parser:     parser,
		ledgerID:   ledgerID,
		user:       user,
		historyLen: historyLen,
		log:        log,
		now:        time.Now,
	}
}

// Transcript returns the session's display messages, placeholder included
// while a send is outstanding.
func (s *Session) Transcript() []Message {
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Send processes one user utterance end to end: permission check, transcript
// persistence, remote parse with heuristic fallback, and placeholder
// reconciliation. Only one send may be outstanding at a time.
func (s *Session) Send(ctx context.Context, input string, categories []models.ExpandedCategory) (Outcome, error) {
	if s.inFlight {
		return Outcome{}, ErrSendInFlight
	}

	perm, err := s.store.MemberPermission(ctx, s.ledgerID, s.user.ID)
	if err != nil {
		return Outcome{}, err
	}
	if !perm.CanRecord() {
		return Outcome{}, ErrNoRecordPermission
	}

	// Captured before the new utterance is persisted so the history window
	// holds only prior turns; the parser appends the new turn itself.
	history := s.history(ctx)

	userEntry, err := s.store.AppendChatLog(ctx, models.ChatLog{
		LedgerID: s.ledgerID,
		UserID:   s.user.ID,
		Role:     models.RoleUser,
		Content:  input,
	})
	if err != nil {
		return Outcome{}, err
	}
	s.transcript = append(s.transcript, Message{ID: userEntry.ID, Role: models.RoleUser, Content: input})

	s.inFlight = true
	placeholderID := s.addPlaceholder()
	defer func() {
		s.removePlaceholder(placeholderID)
		s.inFlight = false
	}()

	outcome := s.parse(ctx, input, history, categories)

	if outcome.Reply != "" {
		replyEntry, err := s.store.AppendChatLog(ctx, models.ChatLog{
			LedgerID: s.ledgerID,
			UserID:   s.user.ID,
			Role:     models.RoleAssistant,
			Content:  outcome.Reply,
		})
		if err != nil {
			s.log.WithError(err).Warn("Failed to persist assistant reply")
		} else {
			s.transcript = append(s.transcript, Message{ID: replyEntry.ID, Role: models.RoleAssistant, Content: outcome.Reply})
		}
	}
	return outcome, nil
}

// parse runs the remote assistant when configured and degrades to the local
// heuristic parser when it is disabled. A transport failure surfaces as an
// apology; the heuristic path remains available on the next turn.
func (s *Session) parse(ctx context.Context, input string, history []assistant.Turn, categories []models.ExpandedCategory) Outcome {
	now := s.now()

	if s.parser != nil {
		reply := s.parser.SendAndParse(ctx, input, s.user.DisplayName, history, categories, now)
		switch reply.Kind {
		case assistant.KindDraft:
			return s.proposed(*reply.Draft, reply.Message, categories)
		case assistant.KindConversational:
			return Outcome{Reply: reply.Message}
		case assistant.KindUnavailable:
			return Outcome{Reply: apologyMessage}
		}
	}

	draft := heuristic.Parse(input, categories, s.user.DisplayName, now)
	if draft == nil {
		return Outcome{Reply: rephraseMessage}
	}
	return s.proposed(*draft, "", categories)
}

func (s *Session) proposed(draft models.Draft, message string, categories []models.ExpandedCategory) Outcome {
	w := NewWorkflow(draft, categories)
	if message == "" {
		d := w.Draft()
		message = "识别到一笔" + d.Type.Label() + "：「" + d.Item + "」" + d.Amount.String() + "元，请确认。"
	}
	if w.Warning() != "" {
		message += "\n" + noCategoryNotice
	}
	return Outcome{Reply: message, Workflow: w}
}

// history returns the trailing persisted transcript as assistant turns.
func (s *Session) history(ctx context.Context) []assistant.Turn {
	logs, err := s.store.RecentChatLogs(ctx, s.ledgerID, s.historyLen)
	if err != nil {
		s.log.WithError(err).Warn("Failed to load chat history, sending without context")
		return nil
	}
	turns := make([]assistant.Turn, 0, len(logs))
	for _, entry := range logs {
		turns = append(turns, assistant.Turn{Role: entry.Role, Content: entry.Content})
	}
	return turns
}

// addPlaceholder appends the interim "processing" message and returns its
// correlation id.
func (s *Session) addPlaceholder() string {
	id := uuid.New().String()
	s.transcript = append(s.transcript, Message{ID: id, Role: models.RoleAssistant, Content: "正在思考…", Pending: true})
	return id
}

// removePlaceholder deletes exactly the message carrying the correlation id.
func (s *Session) removePlaceholder(id string) {
	for i, m := range s.transcript {
		if m.ID == id {
			s.transcript = append(s.transcript[:i], s.transcript[i+1:]...)
			return
		}
	}
}
