// Package capture implements the client side flow that classifies, records,
// saves and uploads one exercise video.
package capture

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the step a session is at.
type State int

const (
	SelectPrimary State = iota
	SelectSecondary
	Recording
	Uploading
	Closed
)

func (s State) String() string {
	switch s {
	case SelectPrimary:
		return "selecting exercise"
	case SelectSecondary:
		return "selecting form"
	case Recording:
		return "recording"
	case Uploading:
		return "uploading"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Outcome is how a closed session ended.
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "pending"
}

// Permission is the typed answer of a capability check.
type Permission int

const (
	PermissionDenied Permission = iota
	PermissionGranted
)

// Camera is the recording device.
type Camera interface {
	RequestPermission(ctx context.Context) Permission
	Start(ctx context.Context) error
	// Stop ends the recording and returns the path of the captured media.
	Stop(ctx context.Context) (string, error)
}

// Event is one journaled session transition.
type Event struct {
	SessionID  string
	State      State
	Outcome    Outcome
	Tag        Tag
	LocalPath  string
	StoredPath string
	Err        string
	At         time.Time
}

// Journal persists session events. Failures are logged, never fatal.
type Journal interface {
	Record(ctx context.Context, e Event) error
}

// Config wires a session to its collaborators.
type Config struct {
	DatasetRoot string
	Camera      Camera
	Uploader    Uploader
	Journal     Journal
	Now         func() time.Time
}

// Session is one pass through the capture flow. All methods are safe for
// concurrent use; at most one record or upload operation runs at a time.
type Session struct {
	id  string
	cfg Config

	mu        sync.Mutex
	state     State
	outcome   Outcome
	tag       Tag
	busy      bool
	recording bool
	localPath string
	err       error
}

func NewSession(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Session{id: uuid.New().String(), cfg: cfg, state: SelectPrimary}
	s.journal(context.Background(), Event{State: SelectPrimary})
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Tag returns the classification chosen so far.
func (s *Session) Tag() Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tag
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// LocalPath is the saved recording, empty until StopRecording persisted it.
func (s *Session) LocalPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localPath
}

// Err is the error that closed the session with Failed, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SelectExercise records the primary tag.
func (s *Session) SelectExercise(e Exercise) error {
	if !e.Valid() {
		return &ValidationError{Field: "exercise", Value: string(e)}
	}
	s.mu.Lock()
	if s.state != SelectPrimary {
		defer s.mu.Unlock()
		return &TransitionError{Op: "select exercise", From: s.state}
	}
	s.tag.Exercise = e
	s.state = SelectSecondary
	ev := s.eventLocked()
	s.mu.Unlock()

	s.journal(context.Background(), ev)
	return nil
}

// SelectForm records the secondary tag and checks camera permission. A
// denied permission closes the session.
func (s *Session) SelectForm(ctx context.Context, f Form) error {
	if !f.Valid() {
		return &ValidationError{Field: "form", Value: string(f)}
	}
	s.mu.Lock()
	if s.state != SelectSecondary || s.busy {
		defer s.mu.Unlock()
		return &TransitionError{Op: "select form", From: s.state}
	}
	s.busy = true
	s.mu.Unlock()

	perm := s.cfg.Camera.RequestPermission(ctx)

	s.mu.Lock()
	s.busy = false
	if s.state != SelectSecondary {
		// Cancelled during the permission prompt.
		defer s.mu.Unlock()
		return ErrCancelled
	}
	s.tag.Form = f
	if perm != PermissionGranted {
		err := &PermissionDeniedError{Capability: "camera"}
		ev := s.closeLocked(Failed, err)
		s.mu.Unlock()
		s.journal(ctx, ev)
		return err
	}
	s.state = Recording
	ev := s.eventLocked()
	s.mu.Unlock()

	s.journal(ctx, ev)
	return nil
}

// Back returns to the previous selection step.
func (s *Session) Back() error {
	s.mu.Lock()
	switch {
	case s.state == SelectSecondary && !s.busy:
		s.tag = Tag{}
		s.state = SelectPrimary
	case s.state == Recording && !s.busy:
		s.tag.Form = ""
		s.state = SelectSecondary
	default:
		defer s.mu.Unlock()
		return &TransitionError{Op: "go back", From: s.state}
	}
	ev := s.eventLocked()
	s.mu.Unlock()

	s.journal(context.Background(), ev)
	return nil
}

// StartRecording starts the camera.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Recording {
		defer s.mu.Unlock()
		return &TransitionError{Op: "start recording", From: s.state}
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	if err := s.cfg.Camera.Start(ctx); err != nil {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		log.Printf("Error starting recording: %v", err)
		return err
	}

	s.mu.Lock()
	if s.state != Recording {
		s.mu.Unlock()
		media, err := s.cfg.Camera.Stop(ctx)
		if err != nil {
			log.Printf("Error stopping camera after cancel: %v", err)
		} else {
			discardCapture(media)
		}
		return ErrCancelled
	}
	s.recording = true
	s.mu.Unlock()
	return nil
}

// StopRecording stops the camera, saves the recording to its dataset path and
// starts the upload. The returned handle reports progress; the session closes
// when the upload ends.
func (s *Session) StopRecording(ctx context.Context) (*UploadHandle, error) {
	s.mu.Lock()
	if s.state == Uploading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.state != Recording || !s.recording {
		defer s.mu.Unlock()
		return nil, &TransitionError{Op: "stop recording", From: s.state}
	}
	s.recording = false
	tag := s.tag
	s.mu.Unlock()

	media, err := s.cfg.Camera.Stop(ctx)
	if err != nil {
		log.Printf("Error during recording: %v", err)
		return nil, s.fail(ctx, err)
	}

	dst := LocalPath(s.cfg.DatasetRoot, tag, s.cfg.Now())
	if err := moveFile(media, dst); err != nil {
		log.Printf("Error saving recording: %v", err)
		return nil, s.fail(ctx, err)
	}
	log.Printf("Video saved locally to: %s", dst)

	s.mu.Lock()
	s.localPath = dst
	if s.state != Recording {
		// Cancelled while saving: keep the file, skip the upload.
		s.busy = false
		ev := s.eventLocked()
		s.mu.Unlock()
		s.journal(ctx, ev)
		return nil, ErrCancelled
	}
	s.state = Uploading
	ev := s.eventLocked()
	s.mu.Unlock()
	s.journal(ctx, ev)

	req := UploadRequest{FilePath: dst, Tag: tag}
	return StartUpload(ctx, s.cfg.Uploader, req, func(res *UploadResult, err error) {
		s.finishUpload(res, err)
	}), nil
}

func (s *Session) finishUpload(res *UploadResult, err error) {
	s.mu.Lock()
	var ev Event
	if err != nil {
		log.Printf("Error uploading video: %v", err)
		ev = s.closeLocked(Failed, err)
	} else {
		if res == nil {
			res = &UploadResult{}
		}
		log.Printf("Upload successful: %s", res.Path)
		ev = s.closeLocked(Succeeded, nil)
		ev.StoredPath = res.Path
	}
	s.mu.Unlock()
	s.journal(context.Background(), ev)
}

// Cancel discards the session. It never removes a saved recording and never
// issues an upload. It is refused while uploading.
func (s *Session) Cancel() error {
	s.mu.Lock()
	switch s.state {
	case Closed:
		s.mu.Unlock()
		return nil
	case Uploading:
		s.mu.Unlock()
		return ErrUploadInFlight
	}
	stopCamera := s.recording
	s.recording = false
	ev := s.closeLocked(Cancelled, nil)
	s.mu.Unlock()

	if stopCamera {
		if media, err := s.cfg.Camera.Stop(context.Background()); err != nil {
			log.Printf("Error stopping camera on cancel: %v", err)
		} else {
			discardCapture(media)
		}
	}
	s.journal(context.Background(), ev)
	return nil
}

// discardCapture removes the camera's unsaved output. It is never a file
// inside the dataset.
func discardCapture(media string) {
	if media == "" {
		return
	}
	if err := os.Remove(media); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove unsaved capture %s: %v", media, err)
		return
	}
	log.Printf("Discarded unsaved capture %s", media)
}

func (s *Session) fail(ctx context.Context, err error) error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return err
	}
	ev := s.closeLocked(Failed, err)
	s.mu.Unlock()
	s.journal(ctx, ev)
	return err
}

func (s *Session) closeLocked(o Outcome, err error) Event {
	s.state = Closed
	s.outcome = o
	s.busy = false
	s.err = err
	return s.eventLocked()
}

func (s *Session) eventLocked() Event {
	ev := Event{
		SessionID: s.id,
		State:     s.state,
		Outcome:   s.outcome,
		Tag:       s.tag,
		LocalPath: s.localPath,
		At:        s.cfg.Now(),
	}
	if s.err != nil {
		ev.Err = s.err.Error()
	}
	return ev
}

func (s *Session) journal(ctx context.Context, ev Event) {
	if s.cfg.Journal == nil {
		return
	}
	ev.SessionID = s.id
	if ev.At.IsZero() {
		ev.At = s.cfg.Now()
	}
	if err := s.cfg.Journal.Record(ctx, ev); err != nil {
		log.Printf("Warning: failed to journal session %s: %v", s.id, err)
	}
}
