package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"formcheck/internal/capture"
)

// backChoice is the form option that returns to the exercise choice.
const backChoice capture.Form = "back"

// Theme is the huh theme shared by every prompt.
func Theme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Info).
		PaddingLeft(1)
	t.Focused.Title = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(Muted)
	t.Focused.SelectSelector = lipgloss.NewStyle().SetString("▸ ").Foreground(Accent)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(Text).Bold(true)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(Muted)
	return t
}

// NewExerciseForm asks which lift is about to be recorded.
func NewExerciseForm(result *capture.Exercise) *huh.Form {
	opts := make([]huh.Option[capture.Exercise], 0, len(capture.Exercises))
	for _, e := range capture.Exercises {
		opts = append(opts, huh.NewOption(e.Name(), e))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[capture.Exercise]().
				Title("Select Exercise").
				Description("Step 1 of 2").
				Options(opts...).
				Value(result),
		),
	).WithTheme(Theme())
}

// NewFormForm asks whether the rep is performed correctly. Choosing Back
// sets result to backChoice. The cursor starts on the first form.
func NewFormForm(exercise capture.Exercise, result *capture.Form) *huh.Form {
	opts := make([]huh.Option[capture.Form], 0, len(capture.Forms)+1)
	for _, f := range capture.Forms {
		opts = append(opts, huh.NewOption(f.Name(), f))
	}
	opts = append(opts, huh.NewOption("Back", backChoice))
	if !result.Valid() {
		*result = capture.Forms[0]
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[capture.Form]().
				Title("Select Form for "+exercise.Name()).
				Description("Step 2 of 2").
				Options(opts...).
				Value(result),
		),
	).WithTheme(Theme())
}
