// ABOUTME: Tests for the case picker
// ABOUTME: Validates defaults and the empty-library error

package menu

import (
	"errors"
	"testing"
)

func TestMenuDefaultsToFirstCase(t *testing.T) {
	m := New([]string{"pglib_opf_case3_lmbd", "pglib_opf_case5_pjm"})

	if got := m.Selected(); got != "pglib_opf_case3_lmbd" {
		t.Errorf("expected first case selected, got %q", got)
	}
	if m.Form() == nil {
		t.Error("expected form to be built")
	}
}

func TestMenuNoCases(t *testing.T) {
	m := New(nil)

	if _, err := m.Run(); !errors.Is(err, ErrNoCases) {
		t.Errorf("expected ErrNoCases, got %v", err)
	}
	if m.Selected() != "" {
		t.Errorf("expected empty selection, got %q", m.Selected())
	}
}
