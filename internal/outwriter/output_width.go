package outwriter

import (
	"os"

	"github.com/huangsam/timemachine/internal/contract"
	"golang.org/x/term"
)

// Path column bounds for table output.
const (
	minPathWidth = 15
	maxPathWidth = 70
)

// GetMaxTablePathWidth calculates the maximum width for file paths in the ownership table
// based on terminal width.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // CI and pipes
		} else {
			termWidth = detectedWidth
		}
	}

	// Author + Commits + Share + Label + Churn + Last with borders/padding
	baseWidth := 75

	available := termWidth - baseWidth
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}
