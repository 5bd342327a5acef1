package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TomasNiDo/study-baddie-ai/document"
	"github.com/TomasNiDo/study-baddie-ai/layout"
	"github.com/TomasNiDo/study-baddie-ai/markdown"
)

// DefaultDebounce coalesces rapid successive updates (e.g. a streaming
// regeneration) into one repagination pass.
const DefaultDebounce = 300 * time.Millisecond

// Session owns the one in-memory document and its paginated result. Updates
// are debounced; every trigger bumps a generation counter and only the pass
// belonging to the newest generation may commit, so a superseded pass can
// never overwrite a fresher page list.
type Session struct {
	log      *zap.Logger
	ts       layout.Typesetter
	debounce time.Duration

	mu     sync.Mutex
	ctx    layout.Context
	gen    uint64
	title  string
	source string
	timer  *time.Timer
	result *layout.Result
	ready  bool

	onUpdate func(*layout.Result)
}

// New creates a session. ts may be nil while the measurement surface is not
// attached yet; passes simply stay stale until it is.
func New(ts layout.Typesetter, ctx layout.Context, debounce time.Duration, log *zap.Logger) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{log: log, ts: ts, ctx: ctx, debounce: debounce}
}

// OnUpdate registers a callback invoked after every committed pass, outside
// the session lock. Export collaborators use it to pick up fresh page lists.
func (s *Session) OnUpdate(fn func(*layout.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Set replaces the document wholesale and schedules a debounced
// repagination. The page list is stale until the pass commits.
func (s *Session) Set(title, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title, s.source = title, source
	s.retrigger()
}

// SetContext replaces the layout context (e.g. a width or dark-mode change)
// and schedules a repagination.
func (s *Session) SetContext(ctx layout.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.retrigger()
}

// retrigger must be called with mu held.
func (s *Session) retrigger() {
	s.ready = false
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.run(gen) })
}

// Flush runs one pass immediately for the current document, superseding any
// pending debounced trigger. Used by one-shot rendering and tests.
func (s *Session) Flush() error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.run(gen)
}

// run executes one repagination pass for the given generation. Holding the
// lock for the whole pass keeps passes serialized against the shared
// typesetter; the generation check makes the last writer win.
func (s *Session) run(gen uint64) error {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("pagination pass superseded", zap.Uint64("gen", gen))
		return nil
	}

	var blocks []*document.Block
	if s.source != "" {
		blocks = markdown.Parse(s.source)
	}
	res, err := layout.Paginate(blocks, s.title, s.ctx, s.ts)
	if err != nil {
		s.mu.Unlock()
		if err == layout.ErrNotReady {
			s.log.Debug("measurement surface not attached, staying stale")
			return err
		}
		s.log.Error("pagination failed", zap.Error(err))
		return err
	}
	s.result = res
	s.ready = true
	cb := s.onUpdate
	s.mu.Unlock()

	s.log.Debug("pagination committed",
		zap.Uint64("gen", gen), zap.Int("pages", len(res.Pages)))
	if cb != nil {
		cb(res)
	}
	return nil
}

// Snapshot returns the latest committed result and whether it is current.
// ready == false means a pass is pending or has never completed; consumers
// like export must not act on the pages.
func (s *Session) Snapshot() (*layout.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.ready
}

// Close cancels any pending trigger.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++ // orphan in-flight timers
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
