package capture

import (
	"fmt"
	"path/filepath"
	"time"
)

// Exercise is the primary classification of a recording.
type Exercise string

const (
	Squat      Exercise = "squat"
	BenchPress Exercise = "bench_press"
	Deadlift   Exercise = "deadlift"
)

// Exercises is the set offered to the user, in display order.
var Exercises = []Exercise{Squat, BenchPress, Deadlift}

// Name is the human readable label.
func (e Exercise) Name() string {
	switch e {
	case Squat:
		return "Squat"
	case BenchPress:
		return "Bench Press"
	case Deadlift:
		return "Deadlift"
	}
	return string(e)
}

func (e Exercise) Valid() bool {
	for _, x := range Exercises {
		if x == e {
			return true
		}
	}
	return false
}

// Form is the secondary classification: whether the lift was performed well.
type Form string

const (
	Correct   Form = "correct"
	Incorrect Form = "incorrect"
)

var Forms = []Form{Correct, Incorrect}

func (f Form) Name() string {
	switch f {
	case Correct:
		return "Correct Form"
	case Incorrect:
		return "Incorrect Form"
	}
	return string(f)
}

func (f Form) Valid() bool {
	return f == Correct || f == Incorrect
}

// Tag is the (exercise, form) pair a video is bucketed under.
type Tag struct {
	Exercise Exercise
	Form     Form
}

func (t Tag) String() string {
	return string(t.Exercise) + "/" + string(t.Form)
}

// Validate checks both halves against the enumerated sets.
func (t Tag) Validate() error {
	if !t.Exercise.Valid() {
		return &ValidationError{Field: "exercise", Value: string(t.Exercise)}
	}
	if !t.Form.Valid() {
		return &ValidationError{Field: "form", Value: string(t.Form)}
	}
	return nil
}

// FileName is <exercise>_<form>_<epoch-millis>.mp4.
func FileName(tag Tag, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d.mp4", tag.Exercise, tag.Form, at.UnixMilli())
}

// LocalPath derives where a finished recording is kept on this device:
// <root>/<exercise>/<form>/<exercise>_<form>_<epoch-millis>.mp4.
func LocalPath(root string, tag Tag, at time.Time) string {
	return filepath.Join(root, string(tag.Exercise), string(tag.Form), FileName(tag, at))
}

// TagFromPath recovers the tag of a file laid out by LocalPath from its two
// parent directories.
func TagFromPath(path string) (Tag, error) {
	formDir := filepath.Dir(path)
	tag := Tag{
		Exercise: Exercise(filepath.Base(filepath.Dir(formDir))),
		Form:     Form(filepath.Base(formDir)),
	}
	if err := tag.Validate(); err != nil {
		return Tag{}, err
	}
	return tag, nil
}
