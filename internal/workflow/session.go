package workflow

import (
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/artcreator/internal/imaging"
	"github.com/ironsheep/artcreator/internal/logging"
	"github.com/ironsheep/artcreator/internal/statemachine"
	"github.com/ironsheep/artcreator/internal/template"
)

// Session is one editing workflow: the current image, its undo history and
// the last generated template, guarded by a state machine.
type Session struct {
	// opMu serializes operations. It is released while a template is being
	// computed so that concurrent callers observe Processing.
	opMu sync.Mutex

	// dataMu guards the fields below for readers that do not hold opMu,
	// including listeners running inside a notification.
	dataMu   sync.RWMutex
	image    image.Image
	format   string
	history  *history
	template *template.Template

	id        string
	machine   *statemachine.Machine
	codec     imaging.Codec
	generator template.Generator
	logger    *slog.Logger
	capacity  int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistoryCapacity overrides the undo depth. Values below 1 become 1.
func WithHistoryCapacity(n int) Option {
	return func(s *Session) {
		s.capacity = n
	}
}

// NewSession creates a session in the machine's current state. A nil machine
// gets a fresh one, a nil codec reads from the filesystem and a nil
// generator uses template.MosaicGenerator.
func NewSession(machine *statemachine.Machine, codec imaging.Codec, gen template.Generator, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		machine:   machine,
		codec:     codec,
		generator: gen,
		logger:    logging.Discard(),
		capacity:  DefaultHistoryCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("session_id", s.id)
	if s.machine == nil {
		s.machine = statemachine.NewMachine(statemachine.NewSubject(s.logger))
	}
	if s.codec == nil {
		s.codec = imaging.FileCodec{}
	}
	if s.generator == nil {
		s.generator = template.MosaicGenerator{}
	}
	s.history = newHistory(s.capacity)
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// ImportImage loads the image at path and makes it current, discarding any
// template. The undo history is kept, so undo after an import can restore an
// image from before it. It is allowed in every state except Processing.
//
// On failure the state and current image are unchanged and the error is an
// *ImportError wrapping the codec failure.
func (s *Session) ImportImage(path string) (image.Image, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	state := s.machine.Current()
	if state.IsSubStateOf(statemachine.Processing) {
		return nil, s.reject("import", state, "template generation in progress")
	}

	s.logger.Info("loading image", "op", "import", "path", path)
	loaded, err := imaging.LoadImage(s.codec, path)
	if err != nil {
		s.logger.Error("import failed", "op", "import", "path", path, "error", err)
		return nil, &ImportError{Path: path, Err: err}
	}

	s.dataMu.Lock()
	s.image = loaded.Image
	s.format = loaded.Format
	s.template = nil
	s.dataMu.Unlock()

	s.transition(statemachine.ImageLoaded)
	return loaded.Image, nil
}

// ApplyTransformation applies an operation (see imaging.ParseOperation) to
// the current image. It is allowed in ImageLoaded and TemplateReady.
//
// The current image is pushed onto the undo history before the transform
// runs, so a failed transform still consumes a history slot. The state and
// current image are otherwise unchanged on failure. On success the state is
// reassigned to ImageLoaded, notifying listeners even if it was already
// ImageLoaded.
func (s *Session) ApplyTransformation(spec string) (image.Image, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	state := s.machine.Current()
	if !editable(state) {
		return nil, s.reject("transform", state, "no image loaded to transform")
	}
	if s.image == nil {
		return nil, s.reject("transform", state, "current image is missing")
	}

	s.dataMu.Lock()
	s.history.Push(s.image)
	s.dataMu.Unlock()

	s.logger.Info("applying transformation", "op", "transform", "operation", spec)
	out, err := imaging.Transform(s.image, spec)
	if err != nil {
		s.logger.Error("transformation failed", "op", "transform", "operation", spec, "error", err)
		return nil, err
	}

	s.dataMu.Lock()
	s.image = out
	s.template = nil
	s.dataMu.Unlock()

	s.transition(statemachine.ImageLoaded)
	return out, nil
}

// UndoLastTransformation restores the most recent snapshot and moves to
// ImageLoaded. Undo is single-direction: nothing is recorded for redo.
//
// It fails with ErrInvalidState when the history is empty or the state is
// neither ImageLoaded nor TemplateReady.
func (s *Session) UndoLastTransformation() (image.Image, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	state := s.machine.Current()
	if !editable(state) {
		return nil, s.reject("undo", state, "no image loaded")
	}

	s.dataMu.Lock()
	restored, ok := s.history.Pop()
	if ok {
		s.image = restored
		s.template = nil
	}
	s.dataMu.Unlock()

	if !ok {
		return nil, s.reject("undo", state, "no transformation to undo")
	}

	s.logger.Info("undid transformation", "op", "undo", "remaining", s.HistoryLen())
	s.transition(statemachine.ImageLoaded)
	return restored, nil
}

// GenerateTemplate runs the template generator on the current image. It is
// only allowed in ImageLoaded.
//
// The state moves to Processing before the computation starts and to
// TemplateReady when it succeeds. If the computation fails or panics, the
// state is rolled back to ImageLoaded and the generator's error (or panic) is
// passed to the caller unchanged. The computation cannot be cancelled.
func (s *Session) GenerateTemplate(cfg template.Config) (*template.Template, error) {
	s.opMu.Lock()
	state := s.machine.Current()
	if !state.IsSubStateOf(statemachine.ImageLoaded) {
		s.opMu.Unlock()
		return nil, s.reject("generate template", state, "an edited image is required")
	}
	src := s.image
	if src == nil {
		s.opMu.Unlock()
		return nil, s.reject("generate template", state, "current image is missing")
	}
	s.transition(statemachine.Processing)
	s.opMu.Unlock()

	done := false
	defer func() {
		if done {
			return
		}
		s.opMu.Lock()
		defer s.opMu.Unlock()
		s.transition(statemachine.ImageLoaded)
	}()

	s.logger.Info("generating template", "op", "generate", "material", cfg.Material)
	tpl, err := s.generator.Generate(src, cfg)
	if err == nil && tpl == nil {
		err = &template.Error{Reason: "generator returned no template"}
	}
	if err != nil {
		s.logger.Error("template generation failed", "op", "generate", "error", err)
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.dataMu.Lock()
	s.template = tpl
	s.dataMu.Unlock()
	done = true
	s.transition(statemachine.TemplateReady)
	return tpl, nil
}

// CurrentState returns the state of the session's machine.
func (s *Session) CurrentState() statemachine.State {
	return s.machine.Current()
}

// CurrentImage returns the current image, or nil in NoImage.
func (s *Session) CurrentImage() image.Image {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.image
}

// CurrentInfo describes the current image, or returns nil if there is none.
func (s *Session) CurrentInfo() *imaging.ImageInfo {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	if s.image == nil {
		return nil
	}
	return imaging.Describe(s.image, s.format)
}

// CurrentTemplate returns the last generated template. It is cleared when
// the image changes.
func (s *Session) CurrentTemplate() *template.Template {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.template
}

// HistoryLen returns the number of undo snapshots held.
func (s *Session) HistoryLen() int {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.history.Len()
}

// HistoryCapacity returns the maximum number of undo snapshots.
func (s *Session) HistoryCapacity() int {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.history.Cap()
}

// Attach registers a state listener. Listeners run synchronously inside
// operations; they may read the session but must not call its operations.
func (s *Session) Attach(l statemachine.Listener) {
	s.machine.Subject().Attach(l)
}

// Detach removes a state listener.
func (s *Session) Detach(l statemachine.Listener) {
	s.machine.Subject().Detach(l)
}

func (s *Session) transition(to statemachine.State) {
	s.logger.Debug("state transition", "from", s.machine.Current().String(), "to", to.String())
	s.machine.SetState(to)
}

func (s *Session) reject(op string, state statemachine.State, reason string) error {
	err := &StateError{Op: op, State: state, Reason: reason}
	s.logger.Warn("operation rejected", "op", op, "state", state.String(), "reason", reason)
	return err
}

// editable reports whether the current image may be transformed.
func editable(state statemachine.State) bool {
	return state.IsSubStateOf(statemachine.ImageLoaded) || state.IsSubStateOf(statemachine.TemplateReady)
}
