package main

import (
	"io"

	"github.com/QuangTung97/buddymem"
	"github.com/QuangTung97/buddymem/command"
	"github.com/charmbracelet/lipgloss"
)

// newLabelStyler colors region labels. The renderer detects whether out is a
// terminal, so redirected output stays plain.
func newLabelStyler(out io.Writer) command.LabelFunc {
	r := lipgloss.NewRenderer(out)
	allocated := r.NewStyle().Foreground(lipgloss.Color("9"))
	free := r.NewStyle().Foreground(lipgloss.Color("10"))

	return func(kind buddymem.Kind, label string) string {
		if kind == buddymem.KindFree {
			return free.Render(label)
		}
		return allocated.Render(label)
	}
}
