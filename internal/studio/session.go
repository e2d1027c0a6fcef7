// Package studio holds the per-user editing session: the uploaded images, the
// chosen perspective, and the lifecycle of the single generation attempt.
package studio

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shotcraft/internal/domain"
	"shotcraft/internal/history"
	"shotcraft/internal/i18n"
	"shotcraft/internal/infra"
	"shotcraft/internal/providers/image"
	"shotcraft/internal/upload"
)

// ErrGeneratorPanic reports a generation attempt whose generator panicked.
var ErrGeneratorPanic = errors.New("generator panicked")

// BatchReader reads an upload batch. *upload.Collector satisfies it.
type BatchReader interface {
	ReadBatch(ctx context.Context, sources []upload.Source) ([]upload.SourceImage, error)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Collector BatchReader
	Generator image.Generator
	Recorder  history.Recorder
	Logger    *infra.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Recorder == nil {
		d.Recorder = history.NopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = infra.NopLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Session is one user's studio. Every handler runs under mu; the model call
// itself runs without it and is guarded by the Loading state.
type Session struct {
	id   uuid.UUID
	deps Deps
	log  zerolog.Logger
	hub  *hub

	mu         sync.Mutex
	images     upload.ImageList
	angle      *Selector[domain.CameraAngle]
	shot       *Selector[domain.CameraShot]
	level      *Selector[domain.CameraLevel]
	additional string
	result     *GenerationResult
	state      State
	notice     *Notice
	updatedAt  time.Time
}

// NewSession creates an idle session with the default perspective.
func NewSession(id uuid.UUID, deps Deps) *Session {
	deps = deps.withDefaults()
	def := domain.DefaultSelection()
	return &Session{
		id:        id,
		deps:      deps,
		log:       deps.Logger.With().Str("session_id", id.String()).Logger(),
		hub:       newHub(),
		angle:     NewSelector("Camera Angle", domain.CameraAngles, def.Angle),
		shot:      NewSelector("Camera Shot", domain.CameraShots, def.Shot),
		level:     NewSelector("Camera Level", domain.CameraLevels, def.Level),
		state:     StateIdle,
		updatedAt: deps.Now(),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// Upload reads a batch of files and appends it. A non-empty batch drops the
// previous result before reading; a failed read leaves the list untouched.
func (s *Session) Upload(ctx context.Context, sources []upload.Source) error {
	if len(sources) == 0 {
		return nil
	}

	s.mu.Lock()
	s.result = nil
	if s.state == StateSucceeded || s.state == StateFailed {
		s.state = StateIdle
	}
	s.changedLocked()
	s.mu.Unlock()

	batch, err := s.deps.Collector.ReadBatch(ctx, sources)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Int("files", len(sources)).Msg("upload failed")
		s.notice = &Notice{Key: i18n.MsgReadFailed}
		s.changedLocked()
		return err
	}
	s.images.Append(batch...)
	s.log.Debug().Int("files", len(batch)).Int("total", s.images.Len()).Msg("images added")
	s.changedLocked()
	return nil
}

// RemoveImage deletes the image at index i. The current result is kept.
func (s *Session) RemoveImage(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.images.Remove(i); err != nil {
		return err
	}
	s.changedLocked()
	return nil
}

func (s *Session) SelectAngle(v string) error {
	return choose(s, v, domain.ParseCameraAngle, s.angle)
}

func (s *Session) SelectShot(v string) error {
	return choose(s, v, domain.ParseCameraShot, s.shot)
}

func (s *Session) SelectLevel(v string) error {
	return choose(s, v, domain.ParseCameraLevel, s.level)
}

func choose[T ~string](s *Session, raw string, parse func(string) (T, error), sel *Selector[T]) error {
	v, err := parse(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, changed, err := sel.Choose(v)
	if err != nil {
		return err
	}
	if changed {
		s.changedLocked()
	}
	return nil
}

// SetAdditionalPrompt stores the free-text instructions verbatim.
func (s *Session) SetAdditionalPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.additional == text {
		return
	}
	s.additional = text
	s.changedLocked()
}

// Generate runs one generation attempt with the current images and
// perspective. It never retries and never queues: a trigger while an attempt
// is running returns domain.ErrGenerationInFlight.
func (s *Session) Generate(ctx context.Context) (*GenerationResult, error) {
	s.mu.Lock()
	if s.images.Len() == 0 {
		s.notice = &Notice{Key: i18n.MsgNoImages}
		s.changedLocked()
		s.mu.Unlock()
		return nil, domain.ErrNoImages
	}
	if s.state == StateLoading {
		s.mu.Unlock()
		return nil, domain.ErrGenerationInFlight
	}

	s.state = StateLoading
	s.notice = nil
	s.result = nil
	items := s.images.Items()
	prompt := domain.ComposePrompt(s.selectionLocked(), s.additional)
	s.changedLocked()
	s.mu.Unlock()

	inputs := make([]image.InputImage, len(items))
	for i, img := range items {
		inputs[i] = image.InputImage{Data: img.Data, MIMEType: img.MIMEType}
	}

	start := s.deps.Now()
	res, err := s.invoke(ctx, inputs, prompt)
	elapsed := s.deps.Now().Sub(start)

	attempt := history.Attempt{
		ID:         uuid.New(),
		SessionID:  s.id,
		Prompt:     prompt,
		ImageCount: len(inputs),
		Duration:   elapsed,
		CreatedAt:  start.UTC(),
	}

	var (
		out    *GenerationResult
		retErr error
	)

	s.mu.Lock()
	switch {
	case err != nil:
		s.state = StateFailed
		s.result = nil
		s.notice = failureNotice(err)
		attempt.Outcome = history.OutcomeFailed
		attempt.Error = s.notice.Text(i18n.LocaleEnglish)
		retErr = err
	case res == nil:
		s.state = StateIdle
		s.result = nil
		s.notice = &Notice{Key: i18n.MsgEmptyResult}
		attempt.Outcome = history.OutcomeEmpty
		retErr = domain.ErrEmptyResult
	default:
		s.state = StateSucceeded
		s.notice = nil
		s.result = &GenerationResult{
			ImageDataURI: res.DataURI,
			MIMEType:     res.MIMEType,
			Data:         res.Data,
			PromptUsed:   prompt,
			CreatedAt:    s.deps.Now(),
		}
		attempt.Outcome = history.OutcomeSucceeded
		attempt.ResultMIME = res.MIMEType
		copied := *s.result
		out = &copied
	}
	s.changedLocked()
	s.mu.Unlock()

	s.log.Info().
		Str("outcome", string(attempt.Outcome)).
		Int("images", attempt.ImageCount).
		Dur("duration", elapsed).
		Msg("generation finished")

	if recErr := s.deps.Recorder.Record(context.WithoutCancel(ctx), attempt); recErr != nil {
		s.log.Warn().Err(recErr).Msg("record attempt failed")
	}

	return out, retErr
}

// invoke calls the generator and turns a panic into ErrGeneratorPanic so the
// session always leaves Loading.
func (s *Session) invoke(ctx context.Context, inputs []image.InputImage, prompt string) (res *image.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error().
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("generator panicked")
			res, err = nil, fmt.Errorf("%w: %v", ErrGeneratorPanic, p)
		}
	}()
	return s.deps.Generator.Generate(ctx, inputs, prompt)
}

// Result returns the current result or domain.ErrNoResult.
func (s *Session) Result() (*GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, domain.ErrNoResult
	}
	copied := *s.result
	return &copied, nil
}

// Snapshot returns the current view with messages in English.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe returns a channel that first yields the current view and then
// every later one. Call the returned func to stop.
func (s *Session) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub.subscribe(s.viewLocked())
}

func (s *Session) lastActive() (time.Time, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, s.state
}

func (s *Session) selectionLocked() domain.Selection {
	return domain.Selection{
		Angle: s.angle.Current(),
		Shot:  s.shot.Current(),
		Level: s.level.Current(),
	}
}

// changedLocked stamps the session and publishes the new view. Publishing
// under mu keeps subscribers in mutation order.
func (s *Session) changedLocked() {
	s.updatedAt = s.deps.Now()
	s.hub.publish(s.viewLocked())
}

func (s *Session) viewLocked() View {
	v := View{
		SessionID:        s.id,
		Images:           s.images.Items(),
		Angles:           s.angle.Options(),
		Shots:            s.shot.Options(),
		Levels:           s.level.Options(),
		Selection:        s.selectionLocked(),
		AdditionalPrompt: s.additional,
		State:            s.state,
		Loading:          s.state == StateLoading,
		CanGenerate:      s.images.Len() > 0 && s.state != StateLoading,
		UpdatedAt:        s.updatedAt,
		notice:           s.notice,
	}
	if s.result != nil {
		copied := *s.result
		v.Result = &copied
		v.DownloadName = copied.FileName()
	}
	v.Error = s.notice.Text(i18n.LocaleEnglish)
	return v
}

func failureNotice(err error) *Notice {
	if ge, ok := image.AsGenerationError(err); ok {
		if ge.Detail == "" {
			return &Notice{Key: i18n.MsgUnknownGeneration}
		}
		return &Notice{Key: i18n.MsgGenerationFailed, Detail: ge.Detail}
	}
	if errors.Is(err, ErrGeneratorPanic) || errors.Is(err, context.Canceled) || err.Error() == "" {
		return &Notice{Key: i18n.MsgUnexpected}
	}
	return &Notice{Key: i18n.MsgVerbatim, Detail: err.Error()}
}
