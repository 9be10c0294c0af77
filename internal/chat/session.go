package chat

import (
	"context"
	"sync"
	"time"

	"github.com/mbeoliero/kit/log"

	"github.com/bzero-app/bzero/pkg/errcode"
	"github.com/bzero-app/bzero/pkg/idgen"
)

// ConversationKind distinguishes group rooms from 1:1 DM rooms
type ConversationKind string

const (
	ConversationRoom ConversationKind = "room"
	ConversationDM   ConversationKind = "dm"
)

// Identity is the current user as the session knows them; provisional
// messages carry this display info so they render like confirmed ones.
type Identity struct {
	UserID       string
	Nickname     string
	ProfileEmoji string
}

// HistoryFetcher supplies paginated history and the member list for a
// conversation. Message slices come back newest-first, the wire order.
type HistoryFetcher interface {
	Messages(ctx context.Context, conversationID, cursor string, limit int) ([]Message, error)
	Members(ctx context.Context, conversationID string) ([]Sender, error)
}

// DialFunc builds the transport for a session; overridable in tests
type DialFunc func(conversationID, authToken string, joinCmd Command, h ConnHandler) (Connector, error)

// SessionOptions tunes a session
type SessionOptions struct {
	SocketURL   string
	PageSize    int
	SendTimeout time.Duration
	Conn        ConnConfig
	Dial        DialFunc
}

// Session is the single object a conversation screen depends on: it owns the
// connection, the message cache, the optimistic-send state and the member
// side cache for exactly one conversation. State is owned per instance so
// multiple conversations can be open at once without cross-talk.
//
// The session mutex serializes every cache mutation; socket reads, send
// timers and caller goroutines all race otherwise.
type Session struct {
	kind           ConversationKind
	conversationID string
	self           Identity
	authToken      string
	history        HistoryFetcher
	dial           DialFunc
	pageSize       int

	// mu serializes all session state. Lock order: session mutex first,
	// outbox mutex second, never the reverse.
	mu      sync.Mutex
	gen     int
	conn    Connector
	state   ConnState
	lastErr *errcode.Error
	cache   *Cache
	outbox  *outbox
	members *memberCache
	updates chan struct{}
}

// sessionHandler forwards transport callbacks into the session, carrying the
// generation captured at dial time. Events from a torn-down transport carry
// a stale generation and are dropped instead of mutating state after
// teardown. The view may remount rapidly and network callbacks can arrive
// after the user navigated away.
type sessionHandler struct {
	s   *Session
	gen int
}

func (h *sessionHandler) OnStateChange(state ConnState, connErr *errcode.Error) {
	h.s.onStateChange(h.gen, state, connErr)
}

func (h *sessionHandler) OnEvent(ev Event) {
	h.s.onEvent(h.gen, ev)
}

// NewSession wires a conversation session. It does not connect; call
// Connect when the view becomes enabled. The conversation id is immutable
// for the session's lifetime; a different conversation means a new session.
func NewSession(kind ConversationKind, conversationID string, self Identity, authToken string, history HistoryFetcher, opts SessionOptions) (*Session, error) {
	if conversationID == "" {
		return nil, errcode.ErrValidation.WithMessage("conversation id required")
	}

	s := &Session{
		kind:           kind,
		conversationID: conversationID,
		self:           self,
		authToken:      authToken,
		history:        history,
		pageSize:       opts.PageSize,
		state:          StateDisconnected,
		outbox:         newOutbox(opts.SendTimeout),
		members:        newMemberCache(),
		updates:        make(chan struct{}, 1),
	}
	if s.pageSize <= 0 {
		s.pageSize = 50
	}

	s.dial = opts.Dial
	if s.dial == nil {
		socketURL := opts.SocketURL
		connCfg := opts.Conn
		s.dial = func(conversationID, authToken string, joinCmd Command, h ConnHandler) (Connector, error) {
			return NewConn(socketURL, conversationID, authToken, joinCmd, h, connCfg)
		}
	}
	return s, nil
}

// ConversationID returns the conversation this session is bound to
func (s *Session) ConversationID() string { return s.conversationID }

// Kind returns whether this session is a group room or a DM room
func (s *Session) Kind() ConversationKind { return s.kind }

// Updates returns the change-notification signal: a receive fires after any
// observable change to the cache, connection state or last error.
func (s *Session) Updates() <-chan struct{} { return s.updates }

// State returns the current connection state
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the most recent connection-level error, nil when clear
func (s *Session) LastError() *errcode.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// MessageCache returns the current cache value. Successive calls return the
// same pointer until something changed.
func (s *Session) MessageCache() *Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache
}

// Connect builds and starts the transport. The returned error covers only
// construction misuse (missing or expired token); transport failures surface
// through State and LastError.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		// A previous transport survived a rapid remount; drop it first.
		old := s.conn
		s.conn = nil
		go old.Close()
	}
	s.gen++
	h := &sessionHandler{s: s, gen: s.gen}

	conn, err := s.dial(s.conversationID, s.authToken, s.joinCmd(), h)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.conn = conn
	s.mu.Unlock()

	return conn.Connect(ctx)
}

// Reconnect tears the transport down and rebuilds it from scratch. This is
// the user-facing reconnect: it must reset error state, not merely retry the
// transport internally.
func (s *Session) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	return s.Connect(ctx)
}

// Disconnect closes the transport and resets session state. Idempotent and
// safe on a session that never connected; all pending send timers are
// cancelled so none fires against a cache that is no longer displayed.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.gen++
	old := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.lastErr = nil
	s.notifyLocked()
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.outbox.cancelAll()
}

// SendMessage makes a locally-initiated send appear instantaneous: the
// provisional message enters the cache before transmission, and either a
// server echo reconciles it or the confirmation timer marks it failed.
// Precondition failures are rejected locally with no cache or connection
// state change.
func (s *Session) SendMessage(content string) error {
	s.mu.Lock()
	conn := s.conn
	if conn == nil || !conn.Connected() {
		s.mu.Unlock()
		log.Warn("send rejected, not connected: conversation_id=%s", s.conversationID)
		return errcode.ErrNotConnected
	}
	if s.self.UserID == "" {
		s.mu.Unlock()
		log.Warn("send rejected, current user unknown: conversation_id=%s", s.conversationID)
		return errcode.ErrNoIdentity
	}

	tempID := s.insertProvisionalLocked(content)
	s.mu.Unlock()

	if err := conn.Send(s.sendCmd(content)); err != nil {
		// The provisional record stays; the confirmation timer resolves it.
		log.Warn("send transmit failed: conversation_id=%s, temp_id=%s, error=%v", s.conversationID, tempID, err)
	}
	return nil
}

// RetryMessage discards a failed send and runs a fresh provisional cycle
// with the recovered content. Retry is send-from-scratch: the message gets a
// new temp id and reappears at the end of the timeline, and the old temp id
// never comes back.
func (s *Session) RetryMessage(oldTempID string) error {
	content, ok := s.outbox.pendingContent(oldTempID)
	if !ok {
		log.Warn("retry skipped, no pending content: temp_id=%s", oldTempID)
		return nil
	}

	s.mu.Lock()
	conn := s.conn
	if conn == nil || !conn.Connected() {
		s.mu.Unlock()
		log.Warn("retry rejected, not connected: conversation_id=%s", s.conversationID)
		return errcode.ErrNotConnected
	}
	if s.self.UserID == "" {
		s.mu.Unlock()
		log.Warn("retry rejected, current user unknown: conversation_id=%s", s.conversationID)
		return errcode.ErrNoIdentity
	}

	s.cache = RemovePending(s.cache, oldTempID)
	s.outbox.forget(oldTempID)

	tempID := s.insertProvisionalLocked(content)
	s.mu.Unlock()

	if err := conn.Send(s.sendCmd(content)); err != nil {
		log.Warn("retry transmit failed: conversation_id=%s, temp_id=%s, error=%v", s.conversationID, tempID, err)
	}
	return nil
}

// ShareCard shares a conversation card with the room; group rooms only
func (s *Session) ShareCard(cardID string) error {
	if s.kind != ConversationRoom {
		return errcode.ErrValidation.WithMessage("cards can only be shared in group rooms")
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil || !conn.Connected() {
		log.Warn("share card rejected, not connected: conversation_id=%s", s.conversationID)
		return errcode.ErrNotConnected
	}
	return conn.Send(ShareCardCmd(cardID))
}

// LoadHistory fetches the newest page and resets the cache to it; called
// when the conversation view opens.
func (s *Session) LoadHistory(ctx context.Context) error {
	if s.members.needsRefresh() {
		if err := s.RefreshMembers(ctx); err != nil {
			log.CtxWarn(ctx, "member refresh failed: conversation_id=%s, error=%v", s.conversationID, err)
		}
	}

	page, err := s.fetchPage(ctx, "")
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = NewCache(page)
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// LoadOlder fetches the next older page behind the current history. Returns
// false when no older page exists.
func (s *Session) LoadOlder(ctx context.Context) (bool, error) {
	cursor := s.MessageCache().NextCursor()
	if cursor == "" {
		return false, nil
	}

	page, err := s.fetchPage(ctx, cursor)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.cache = AppendOlderPage(s.cache, page)
	s.notifyLocked()
	s.mu.Unlock()
	return true, nil
}

// RefreshMembers refetches the conversation member list
func (s *Session) RefreshMembers(ctx context.Context) error {
	members, err := s.history.Members(ctx, s.conversationID)
	if err != nil {
		return err
	}
	s.members.replace(members)
	return nil
}

// fetchPage pulls one wire page (newest-first) and shapes it for the cache:
// reversed to oldest-first, senders joined, and the cursor set to the oldest
// message id when the page was full enough to suggest more history.
func (s *Session) fetchPage(ctx context.Context, cursor string) (Page, error) {
	wire, err := s.history.Messages(ctx, s.conversationID, cursor, s.pageSize)
	if err != nil {
		return Page{}, err
	}

	msgs := make([]Message, len(wire))
	for i, m := range wire {
		msgs[len(wire)-1-i] = s.members.joinSender(m)
	}

	var next string
	if len(wire) >= s.pageSize {
		next = wire[len(wire)-1].ID
	}
	return Page{Messages: msgs, NextCursor: next}, nil
}

// insertProvisionalLocked creates the provisional message, puts it in the
// cache and arms its confirmation timer. Caller holds the session mutex.
func (s *Session) insertProvisionalLocked(content string) string {
	tempID := idgen.TempID()
	sender := Sender{UserID: s.self.UserID, Nickname: s.self.Nickname, ProfileEmoji: s.self.ProfileEmoji}

	s.cache = Append(s.cache, Message{
		ConversationID: s.conversationID,
		SenderID:       s.self.UserID,
		Content:        content,
		Kind:           KindText,
		CreatedAt:      time.Now(),
		Sender:         &sender,
		Status:         StatusSending,
		TempID:         tempID,
	})
	s.notifyLocked()

	gen := s.gen
	s.outbox.track(tempID, content, func() {
		s.onSendTimeout(gen, tempID)
	})
	return tempID
}

func (s *Session) onSendTimeout(gen int, tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}

	log.Warn("send timed out: conversation_id=%s, temp_id=%s", s.conversationID, tempID)
	s.cache = SetStatus(s.cache, tempID, StatusFailed)
	s.notifyLocked()
}

func (s *Session) onStateChange(gen int, state ConnState, connErr *errcode.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}

	s.state = state
	if connErr != nil {
		s.lastErr = connErr
	} else if state == StateConnecting || state == StateConnected {
		s.lastErr = nil
	}
	s.notifyLocked()
}

func (s *Session) onEvent(gen int, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}

	switch ev := ev.(type) {
	case NewMessageEvent:
		s.handleIncomingLocked(ev.Message)
	case NewDMMessageEvent:
		s.handleIncomingLocked(ev.Message)
	case SystemMessageEvent:
		s.cache = Append(s.cache, ev.Message)
		s.members.markStale()
		s.notifyLocked()
		go s.refreshMembersAsync(gen)
	case ErrorEvent:
		text := ev.Text()
		log.Warn("socket error event: conversation_id=%s, error=%s", s.conversationID, text)
		s.lastErr = errcode.ErrSocket.WithMessage(text)
		s.notifyLocked()
	}
}

// handleIncomingLocked routes a confirmed message: the current user's own
// echo reconciles its provisional record when one is still pending,
// everything else appends (dedup by id inside Append).
func (s *Session) handleIncomingLocked(msg Message) {
	msg = s.members.joinSender(msg)

	if msg.SenderID != "" && msg.SenderID == s.self.UserID {
		if tempID, ok := FindPendingByContent(s.cache, s.self.UserID, msg.Content); ok {
			s.cache = ReplacePending(s.cache, tempID, msg)
			s.outbox.resolve(tempID)
			s.notifyLocked()
			return
		}
	}

	s.cache = Append(s.cache, msg)
	s.notifyLocked()
}

// refreshMembersAsync refetches members after a system message signalled a
// membership change; results for a torn-down generation are dropped.
func (s *Session) refreshMembersAsync(gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	members, err := s.history.Members(ctx, s.conversationID)
	if err != nil {
		log.CtxWarn(ctx, "member refresh failed: conversation_id=%s, error=%v", s.conversationID, err)
		return
	}

	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	s.members.replace(members)
}

func (s *Session) joinCmd() Command {
	if s.kind == ConversationDM {
		return JoinDMRoomCmd(s.conversationID)
	}
	return JoinRoomCmd(s.conversationID)
}

func (s *Session) sendCmd(content string) Command {
	if s.kind == ConversationDM {
		return SendDMMessageCmd(s.conversationID, content)
	}
	return SendMessageCmd(content)
}

// notifyLocked signals observers without blocking; a pending signal already
// covers this change.
func (s *Session) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
