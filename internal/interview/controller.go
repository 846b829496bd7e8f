package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/client"
	"csacademy/interview/internal/messages"
	"csacademy/interview/internal/metrics"
	"csacademy/interview/internal/models"
)

// Recorder persists a finished interview. Failures are logged, never
// surfaced to the user.
type Recorder interface {
	Record(ctx context.Context, session *models.InterviewSession, transcript []models.InterviewMessage) error
}

// Listener receives a snapshot after every applied action.
type Listener func(State)

// Controller owns one interview attempt: it issues backend calls and reduces
// their results into a single State.
//
// Actions may be called from several goroutines; each reduction is applied
// atomically, but calls are not serialised against each other. Callers that
// need strict turn ordering must wait for SendMessage to return before
// sending again.
type Controller struct {
	backend  client.Backend
	identity auth.IdentitySource
	texts    messages.TextProvider
	recorder Recorder
	logger   *zap.Logger

	interviewType     string
	defaultDifficulty models.Difficulty
	totalQuestions    int
	now               func() time.Time
	newID             func() string

	mu           sync.Mutex
	state        State
	generation   uint64
	listeners    map[int]Listener
	nextListener int
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithCatalog(texts messages.TextProvider) Option {
	return func(c *Controller) { c.texts = texts }
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

func WithInterviewType(t string) Option {
	return func(c *Controller) {
		if t != "" {
			c.interviewType = t
		}
	}
}

// WithDefaultDifficulty sets the difficulty used when CreateSession gets
// none. Unknown values are ignored.
func WithDefaultDifficulty(d string) Option {
	return func(c *Controller) {
		if nd := models.Difficulty(strings.ToLower(strings.TrimSpace(d))); models.ValidDifficulties[nd] {
			c.defaultDifficulty = nd
		}
	}
}

func WithTotalQuestions(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.totalQuestions = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

func NewController(backend client.Backend, identity auth.IdentitySource, opts ...Option) *Controller {
	c := &Controller{
		backend:           backend,
		identity:          identity,
		texts:             messages.Default(),
		logger:            zap.NewNop(),
		interviewType:     models.DefaultInterviewType,
		defaultDifficulty: models.DefaultDifficulty,
		totalQuestions:    models.DefaultTotalQuestions,
		now:               time.Now,
		newID:             func() string { return uuid.New().String() },
		listeners:         make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = c.initialState()
	return c
}

func (c *Controller) initialState() State {
	s := InitialState()
	s.TotalQuestions = c.totalQuestions
	return s
}

// State returns a deep copy of the current aggregate.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe registers fn and returns a func that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// snapshot returns the generation an action belongs to and the state it
// starts from.
func (c *Controller) snapshot() (uint64, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, c.state.Clone()
}

// dispatch reduces a into the state unless the session was reset since gen
// was taken. It reports whether the action was applied.
func (c *Controller) dispatch(gen uint64, a Action) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		metrics.ObserveStaleAction()
		c.logger.Debug("Dropping stale interview action", zap.Stringer("action", a.Kind))
		return false
	}
	c.state = Reduce(c.state, a)
	c.notifyLocked()
	return true
}

// notifyLocked releases c.mu before calling listeners.
func (c *Controller) notifyLocked() {
	snap := c.state.Clone()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap.Clone())
	}
}

// fail stores the user-facing text for err and hands err back.
func (c *Controller) fail(gen uint64, action string, err error) error {
	metrics.ObserveAction(action, err)
	if !c.dispatch(gen, SetError(client.UserMessage(c.texts, err))) {
		return ErrSessionReset
	}
	return err
}

func (c *Controller) systemMessage(id, key string) models.InterviewMessage {
	return models.InterviewMessage{
		ID:        id,
		Type:      models.MessageTypeSystem,
		Content:   messages.Lookup(c.texts, messages.GroupSystem, key),
		Sender:    models.SenderSystem,
		Timestamp: c.now(),
	}
}

// CreateSession asks the backend for a new session owned by the current
// user. Each call creates another remote session.
func (c *Controller) CreateSession(ctx context.Context, difficulty string) error {
	const action = "create_session"
	gen, _ := c.snapshot()

	identity, err := c.currentUser(ctx)
	if err != nil {
		return c.fail(gen, action, err)
	}

	c.dispatch(gen, SetLoading(true))
	c.dispatch(gen, ClearError())

	level := c.defaultDifficulty
	if strings.TrimSpace(difficulty) != "" {
		level = client.NormalizeDifficulty(difficulty)
	}
	session, err := c.backend.CreateInterview(ctx, models.CreateInterviewRequest{
		UserID:        identity.UserID,
		InterviewType: c.interviewType,
		Difficulty:    string(level),
	})
	if err != nil {
		c.logger.Error("Failed to create interview session", zap.Error(err), zap.String("user_id", identity.UserID))
		return c.fail(gen, action, err)
	}

	if !c.dispatch(gen, SessionCreated(session)) {
		return ErrSessionReset
	}
	metrics.ObserveAction(action, nil)
	c.logger.Info("Interview session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", identity.UserID),
		zap.String("difficulty", string(session.Difficulty)))
	return nil
}

func (c *Controller) currentUser(ctx context.Context) (*auth.Identity, error) {
	if c.identity == nil {
		return nil, ErrAuthRequired
	}
	identity, err := c.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	if identity == nil || identity.UserID == "" {
		return nil, ErrAuthRequired
	}
	return identity, nil
}

// StartSession starts the stored session and then sends the greeting that
// prompts the first question. If the greeting fails the session stays
// started.
func (c *Controller) StartSession(ctx context.Context) error {
	const action = "start_session"
	gen, st := c.snapshot()
	if !st.HasSession() {
		return c.fail(gen, action, ErrNoActiveSession)
	}
	session := st.Session

	c.dispatch(gen, SetLoading(true))
	c.dispatch(gen, ClearError())

	reply, err := c.backend.StartInterview(ctx, session.ID, models.StartInterviewRequest{UserID: session.UserID})
	if err != nil {
		c.logger.Error("Failed to start interview session", zap.Error(err), zap.String("session_id", session.ID))
		return c.fail(gen, action, err)
	}

	started := client.StartedSession(session, *reply)
	if !c.dispatch(gen, SessionStarted(started, c.systemMessage("start", messages.SessionStarted))) {
		return ErrSessionReset
	}
	metrics.ObserveAction(action, nil)
	c.logger.Info("Interview session started", zap.String("session_id", started.ID))

	greeting := messages.Lookup(c.texts, messages.GroupSystem, messages.Greeting)
	return c.SendMessage(ctx, greeting, models.MessageTypeStart)
}

// SendMessage appends the user's message immediately, then appends the AI
// reply once the backend answers. On failure the user's message stays.
func (c *Controller) SendMessage(ctx context.Context, content string, msgType models.MessageType) error {
	const action = "send_message"
	gen, st := c.snapshot()
	if !st.HasSession() {
		return c.fail(gen, action, ErrNoActiveSession)
	}
	if msgType == "" {
		msgType = models.MessageTypeResponse
	}
	sessionID := st.Session.ID

	if !c.dispatch(gen, MessageSent(models.InterviewMessage{
		ID:        "user_" + c.newID(),
		Type:      msgType,
		Content:   content,
		Sender:    models.SenderUser,
		Timestamp: c.now(),
	})) {
		return ErrSessionReset
	}

	reply, err := c.backend.SendMessage(ctx, sessionID, content)
	if err != nil {
		c.logger.Error("Failed to send interview message", zap.Error(err), zap.String("session_id", sessionID))
		return c.fail(gen, action, err)
	}

	if !c.dispatch(gen, AIResponse(*reply, "ai_"+c.newID(), c.now())) {
		return ErrSessionReset
	}
	metrics.ObserveAction(action, nil)
	c.logger.Debug("Interview reply received",
		zap.String("session_id", sessionID),
		zap.String("phase", reply.InterviewPhase),
		zap.Bool("session_complete", reply.IsSessionComplete))
	return nil
}

// EndSession ends the session and records the transcript when a recorder is
// configured. Sending after this point is not blocked here.
func (c *Controller) EndSession(ctx context.Context) error {
	const action = "end_session"
	gen, st := c.snapshot()
	if !st.HasSession() {
		return c.fail(gen, action, ErrNoActiveSession)
	}
	session := st.Session

	c.dispatch(gen, SetLoading(true))

	final, err := c.backend.EndInterview(ctx, session.ID, session)
	if err != nil {
		c.logger.Error("Failed to end interview session", zap.Error(err), zap.String("session_id", session.ID))
		return c.fail(gen, action, err)
	}

	if !c.dispatch(gen, SessionEnded(final, c.systemMessage("end", messages.SessionEnded), c.now())) {
		return ErrSessionReset
	}
	metrics.ObserveAction(action, nil)
	c.logger.Info("Interview session ended", zap.String("session_id", final.ID))

	if c.recorder != nil {
		done := c.State()
		if err := c.recorder.Record(ctx, done.Session, done.Messages); err != nil {
			c.logger.Warn("Failed to record interview history", zap.Error(err), zap.String("session_id", final.ID))
		}
	}
	return nil
}

// RefreshStatus pulls the backend's view of the session. Backward status
// moves are ignored. A failed refresh leaves the state untouched.
func (c *Controller) RefreshStatus(ctx context.Context) error {
	const action = "refresh_status"
	gen, st := c.snapshot()
	if !st.HasSession() {
		return c.fail(gen, action, ErrNoActiveSession)
	}

	session, err := c.backend.InterviewStatus(ctx, st.Session.ID, st.Session)
	metrics.ObserveAction(action, err)
	if err != nil {
		c.logger.Warn("Failed to refresh interview status", zap.Error(err), zap.String("session_id", st.Session.ID))
		return err
	}
	if !c.dispatch(gen, SessionRefreshed(session)) {
		return ErrSessionReset
	}
	return nil
}

// ResetSession discards everything and returns to the initial state.
// Requests still in flight are not cancelled; their results are dropped.
func (c *Controller) ResetSession() {
	c.mu.Lock()
	c.generation++
	c.state = c.initialState()
	c.notifyLocked()
	metrics.ObserveAction("reset_session", nil)
}
