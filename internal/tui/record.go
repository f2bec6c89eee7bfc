// Package tui is the terminal front end of the capture flow.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"formcheck/internal/capture"
)

const tickInterval = time.Second

type tickMsg time.Time

type startedMsg struct{ err error }

type stoppedMsg struct {
	handle *capture.UploadHandle
	err    error
}

type progressMsg int

type uploadDoneMsg struct {
	result *capture.UploadResult
	err    error
}

// RecordModel drives a session from Recording to Closed.
type RecordModel struct {
	ctx     context.Context
	session *capture.Session

	started   time.Time
	elapsed   time.Duration
	recording bool
	saving    bool
	handle    *capture.UploadHandle
	progress  int
	result    *capture.UploadResult
	err       error
	done      bool
	width     int
}

// NewRecordModel expects a session whose tags are both chosen.
func NewRecordModel(ctx context.Context, s *capture.Session) *RecordModel {
	return &RecordModel{ctx: ctx, session: s, width: 60}
}

func (m *RecordModel) Init() tea.Cmd {
	return m.startCmd()
}

func (m *RecordModel) startCmd() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: m.session.StartRecording(m.ctx)}
	}
}

func (m *RecordModel) stopCmd() tea.Cmd {
	return func() tea.Msg {
		h, err := m.session.StopRecording(m.ctx)
		return stoppedMsg{handle: h, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitProgress reads the next percentage, or the final result once the
// stream is closed.
func waitProgress(ctx context.Context, h *capture.UploadHandle) tea.Cmd {
	return func() tea.Msg {
		if pct, ok := <-h.Progress(); ok {
			return progressMsg(pct)
		}
		res, err := h.Wait(ctx)
		return uploadDoneMsg{result: res, err: err}
	}
}

func (m *RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, nil
		}
		m.recording = true
		m.started = time.Now()
		return m, tickCmd()

	case tickMsg:
		if !m.recording {
			return m, nil
		}
		m.elapsed = time.Time(msg).Sub(m.started).Truncate(time.Second)
		return m, tickCmd()

	case stoppedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, nil
		}
		m.handle = msg.handle
		return m, waitProgress(m.ctx, msg.handle)

	case progressMsg:
		if int(msg) > m.progress {
			m.progress = int(msg)
		}
		return m, waitProgress(m.ctx, m.handle)

	case uploadDoneMsg:
		m.result, m.err = msg.result, msg.err
		m.handle = nil
		m.done = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *RecordModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, tea.Quit
	}
	switch msg.String() {
	case " ", "enter", "s":
		if m.recording && !m.saving {
			m.recording = false
			m.saving = true
			return m, m.stopCmd()
		}
	case "esc", "q", "ctrl+c":
		if m.saving {
			// The recording is being moved into the dataset.
			return m, nil
		}
		if m.handle != nil {
			m.handle.Cancel()
			return m, nil
		}
		if err := m.session.Cancel(); err != nil && !errors.Is(err, capture.ErrUploadInFlight) {
			m.err = err
		}
		m.recording = false
		return m, tea.Quit
	}
	return m, nil
}

// Result is the receiver's answer, or nil when the upload did not succeed.
func (m *RecordModel) Result() *capture.UploadResult { return m.result }

// Err is the error that ended the flow.
func (m *RecordModel) Err() error { return m.err }

func (m *RecordModel) View() string {
	var b strings.Builder
	tag := m.session.Tag()
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s · %s", tag.Exercise.Name(), tag.Form.Name())))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		if p := m.session.LocalPath(); p != "" {
			b.WriteString("\n" + hintStyle.Render("Recording kept at "+p))
		}
		b.WriteString("\n\n" + hintStyle.Render("press any key to exit"))
	case m.done:
		b.WriteString(successStyle.Render("Upload successful"))
		if m.result != nil {
			b.WriteString("\n" + textStyle.Render("Stored at "+m.result.Path))
		}
		b.WriteString("\n\n" + hintStyle.Render("press any key to exit"))
	case m.handle != nil:
		b.WriteString(textStyle.Render("Uploading...") + "\n")
		b.WriteString(ProgressBar(m.progress, m.width-4))
		b.WriteString("\n\n" + hintStyle.Render("esc abort upload"))
	case m.saving:
		b.WriteString(textStyle.Render("Saving recording..."))
	case m.recording:
		b.WriteString(recordingStyle.Render("● REC ") + textStyle.Render(formatElapsed(m.elapsed)))
		b.WriteString("\n\n" + hintStyle.Render("space stop and upload · esc discard"))
	default:
		b.WriteString(textStyle.Render("Starting camera..."))
	}
	return boxStyle.Render(b.String()) + "\n"
}

func formatElapsed(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// RunCapture walks the user through choosing tags, recording and uploading.
// It returns the final upload result, or nil when the session was cancelled.
func RunCapture(ctx context.Context, s *capture.Session) (*capture.UploadResult, error) {
	for s.State() != capture.Recording {
		switch s.State() {
		case capture.SelectPrimary:
			var ex capture.Exercise
			if err := NewExerciseForm(&ex).Run(); err != nil {
				return nil, cancelOnAbort(s, err)
			}
			if err := s.SelectExercise(ex); err != nil {
				return nil, err
			}
		case capture.SelectSecondary:
			var f capture.Form
			if err := NewFormForm(s.Tag().Exercise, &f).Run(); err != nil {
				return nil, cancelOnAbort(s, err)
			}
			if f == backChoice {
				if err := s.Back(); err != nil {
					return nil, err
				}
				continue
			}
			if err := s.SelectForm(ctx, f); err != nil {
				return nil, err
			}
		default:
			return nil, s.Err()
		}
	}

	model := NewRecordModel(ctx, s)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return nil, err
	}
	return model.Result(), model.Err()
}

func cancelOnAbort(s *capture.Session, err error) error {
	if cerr := s.Cancel(); cerr != nil {
		return cerr
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return capture.ErrCancelled
	}
	return err
}
