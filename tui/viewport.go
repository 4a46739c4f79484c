// ABOUTME: Cursor-to-middle scrolling for the playlist
// ABOUTME: Computes the viewport offset that keeps the cursor row in view

package tui

// scrollPhase describes where the cursor sits relative to the window
type scrollPhase int

const (
	topPhase    scrollPhase = iota // Cursor moves, window pinned to the first row
	middlePhase                    // Cursor pinned to the middle, rows scroll
	bottomPhase                    // Window pinned to the last row, cursor moves
)

// phaseOf classifies a cursor position in a window of height rows over total rows
func phaseOf(height, cursor, total int) scrollPhase {
	if total == 0 || height < 1 {
		return topPhase
	}

	middle := height / 2
	if cursor < middle {
		return topPhase
	}

	if cursor < total-height+middle {
		return middlePhase
	}

	return bottomPhase
}

// scrollOffset returns the first visible row. The cursor travels to the
// middle of the window, then the list scrolls under it until the last row
// is visible.
func scrollOffset(height, cursor, total int) int {
	switch phaseOf(height, cursor, total) {
	case middlePhase:
		return cursor - height/2
	case bottomPhase:
		return max(total-height, 0)
	default:
		return 0
	}
}
