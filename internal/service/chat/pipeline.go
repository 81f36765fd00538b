package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/model/chat"
	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/history"
	profilesvc "github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrExchangeInFlight = errors.New("a reply is still pending")
	ErrSessionNotFound  = errors.New("session not found")
)

// Snapshot is a copy of the visible conversation.
type Snapshot struct {
	SessionID string         `json:"sessionId,omitempty"`
	Messages  []chat.Message `json:"messages"`
	Awaiting  bool           `json:"awaiting"`
}

// Exchange is one settled send: the user turn and the AI turn answering it.
type Exchange struct {
	SessionID string       `json:"sessionId"`
	User      chat.Message `json:"user"`
	AI        chat.Message `json:"ai"`
	Status    reply.Status `json:"status"`
}

// Pending is an exchange whose user turn is recorded but whose reply has not
// arrived yet.
type Pending struct {
	SessionID string
	User      chat.Message

	profile *profile.UserProfile
}

// Pipeline owns the in-memory message list of one visitor's chat view.
// At most one exchange awaits a reply at any time.
type Pipeline struct {
	profiles *profilesvc.Store
	history  *history.Store
	replier  reply.Replier
	logger   logrus.FieldLogger
	now      func() time.Time
	// replyTimeout bounds one Reply call; zero means none.
	replyTimeout time.Duration

	mu          sync.Mutex
	initialized bool
	messages    []chat.Message
	sessionID   string
	awaiting    bool
}

// NewPipeline wires a pipeline to a visitor's stores.
func NewPipeline(profiles *profilesvc.Store, hist *history.Store, replier reply.Replier, logger logrus.FieldLogger, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		profiles: profiles,
		history:  hist,
		replier:  replier,
		logger:   logger,
		now:      now,
	}
}

// Initialize loads the session named by the current pointer, or starts from
// the welcome message. Later calls are no-ops.
func (p *Pipeline) Initialize(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initLocked(ctx)
}

func (p *Pipeline) initLocked(ctx context.Context) {
	if p.initialized {
		return
	}
	p.initialized = true

	if id, ok := p.history.CurrentSessionID(ctx); ok {
		p.sessionID = id
		if session, found := p.history.Find(ctx, id); found && len(session.Messages) > 0 {
			p.messages = session.Messages
			return
		}
	}
	p.messages = []chat.Message{p.welcome(ctx)}
}

func (p *Pipeline) welcome(ctx context.Context) chat.Message {
	name := ""
	if prof, ok := p.profiles.Load(ctx); ok {
		name = prof.Name
	}
	return chat.Welcome(name, p.now())
}

// Snapshot returns a copy of the current view.
func (p *Pipeline) Snapshot(ctx context.Context) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initLocked(ctx)
	return p.snapshotLocked()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: p.sessionID,
		Messages:  append([]chat.Message(nil), p.messages...),
		Awaiting:  p.awaiting,
	}
}

// Send records text, waits for the reply and records it.
func (p *Pipeline) Send(ctx context.Context, text string) (Exchange, error) {
	pending, err := p.Begin(ctx, text)
	if err != nil {
		return Exchange{}, err
	}
	return p.Complete(ctx, pending), nil
}

// Begin appends the user message and enters the awaiting state. Blank text
// is rejected without touching state; other text is kept as typed.
func (p *Pipeline) Begin(ctx context.Context, text string) (*Pending, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.initLocked(ctx)

	if p.awaiting {
		return nil, ErrExchangeInFlight
	}

	user := chat.NewMessage(chat.SenderUser, text, p.now())
	p.messages = append(append([]chat.Message(nil), p.messages...), user)

	if p.sessionID == "" {
		p.sessionID = chat.NewID()
		if err := p.history.SetCurrentSessionID(ctx, p.sessionID); err != nil {
			p.logger.WithError(err).Warn("failed to persist current session id")
		}
	}
	p.persistLocked(ctx, p.sessionID, p.messages)
	p.awaiting = true

	pending := &Pending{SessionID: p.sessionID, User: user}
	if prof, ok := p.profiles.Load(ctx); ok {
		pending.profile = &prof
	}
	return pending, nil
}

// Complete asks the replier and appends exactly one AI message. The request
// and the write outlive ctx cancellation so a disconnected client still gets
// its reply recorded, but the request itself is bounded by the reply timeout
// so the awaiting state always ends. If the view moved to another session
// meanwhile, the reply goes to the session the question was asked in.
func (p *Pipeline) Complete(ctx context.Context, pending *Pending) Exchange {
	ctx = context.WithoutCancel(ctx)
	result := p.reply(ctx, pending)
	ai := chat.NewMessage(chat.SenderAI, result.Text, p.now())

	p.mu.Lock()
	defer p.mu.Unlock()
	p.awaiting = false

	if p.sessionID == pending.SessionID {
		p.messages = append(append([]chat.Message(nil), p.messages...), ai)
		p.persistLocked(ctx, p.sessionID, p.messages)
	} else {
		origin, ok := p.history.Find(ctx, pending.SessionID)
		if !ok {
			origin.Messages = []chat.Message{pending.User}
		}
		p.logger.WithField("session", pending.SessionID).Info("reply arrived after view changed session")
		p.persistLocked(ctx, pending.SessionID, append(origin.Messages, ai))
	}

	return Exchange{
		SessionID: pending.SessionID,
		User:      pending.User,
		AI:        ai,
		Status:    result.Status,
	}
}

func (p *Pipeline) reply(ctx context.Context, pending *Pending) reply.Result {
	if p.replyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.replyTimeout)
		defer cancel()
	}
	return p.replier.Reply(ctx, pending.User.Text, pending.profile)
}

func (p *Pipeline) persistLocked(ctx context.Context, sessionID string, messages []chat.Message) {
	if err := p.history.Upsert(ctx, sessionID, messages); err != nil {
		p.logger.WithError(err).WithField("session", sessionID).Warn("failed to persist session")
	}
}

// Reset starts over with a fresh welcome and clears the current pointer, so
// the next message opens a new session. The old session stays in history.
func (p *Pipeline) Reset(ctx context.Context) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initialized = true
	p.messages = []chat.Message{p.welcome(ctx)}
	p.sessionID = ""
	if err := p.history.ClearCurrentSessionID(ctx); err != nil {
		p.logger.WithError(err).Warn("failed to clear current session id")
	}
	return p.snapshotLocked()
}

// LoadSession replaces the view with a stored session.
func (p *Pipeline) LoadSession(ctx context.Context, sessionID string) (Snapshot, error) {
	session, ok := p.history.Find(ctx, sessionID)
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.initialized = true
	p.messages = session.Messages
	p.sessionID = session.ID
	if err := p.history.SetCurrentSessionID(ctx, session.ID); err != nil {
		p.logger.WithError(err).Warn("failed to persist current session id")
	}
	return p.snapshotLocked(), nil
}

// Sessions lists stored sessions, newest first.
func (p *Pipeline) Sessions(ctx context.Context) []chat.Session {
	return history.SortByRecency(p.history.LoadAll(ctx))
}
