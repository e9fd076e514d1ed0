// ABOUTME: Case picker shown when the viewer starts without a case argument
// ABOUTME: Lists cases that already have mean data and lets the user choose one

package menu

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrNoCases is returned when there is nothing to pick from
var ErrNoCases = errors.New("no case has summary data yet; run `opfbench report mean <case>` first")

// Menu is the case selection form
type Menu struct {
	cases    []string
	selected string
}

// New creates a picker over cases
func New(cases []string) *Menu {
	m := &Menu{cases: cases}
	if len(cases) > 0 {
		m.selected = cases[0]
	}
	return m
}

// Form builds the huh form bound to the selection
func (m *Menu) Form() *huh.Form {
	options := make([]huh.Option[string], 0, len(m.cases))
	for _, c := range m.cases {
		options = append(options, huh.NewOption(c, c))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select test case").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(huh.ThemeBase())
}

// Run displays the picker and returns the chosen case
func (m *Menu) Run() (string, error) {
	if len(m.cases) == 0 {
		return "", ErrNoCases
	}
	if err := m.Form().Run(); err != nil {
		return "", err
	}
	return m.selected, nil
}

// Selected returns the current choice
func (m *Menu) Selected() string { return m.selected }
