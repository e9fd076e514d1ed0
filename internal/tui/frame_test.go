// ABOUTME: Test to verify header/footer width alignment
// ABOUTME: Ensures frame renders at correct terminal width

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestFrameAlignment(t *testing.T) {
	widths := []int{60, 80, 100, 120}

	for _, targetWidth := range widths {
		t.Run(fmt.Sprintf("width %d", targetWidth), func(t *testing.T) {
			app := New(testData())

			model, _ := app.Update(tea.WindowSizeMsg{Width: targetWidth, Height: 30})
			app = model.(*App)

			lines := strings.Split(app.View(), "\n")
			header, footer := lines[0], lines[len(lines)-1]

			// Frame clamps to a minimum of 80 columns for usability
			expectedWidth := max(targetWidth, 80)

			if !strings.HasPrefix(header, "╭") {
				t.Fatalf("first line is not the header: %q", header)
			}
			if w := lipgloss.Width(header); w != expectedWidth {
				t.Errorf("Header width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
			}
			if !strings.HasPrefix(footer, "╰") {
				t.Fatalf("last line is not the footer: %q", footer)
			}
			if w := lipgloss.Width(footer); w != expectedWidth {
				t.Errorf("Footer width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
			}
		})
	}
}
