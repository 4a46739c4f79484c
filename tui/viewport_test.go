// ABOUTME: Tests for playlist scrolling
// ABOUTME: Verifies the cursor-to-middle behaviour across all three phases

package tui

import "testing"

func TestScrollOffset(t *testing.T) {
	// Window of 10 rows over 50 tracks unless stated otherwise
	tests := []struct {
		name       string
		height     int
		cursor     int
		total      int
		wantOffset int
		wantPhase  scrollPhase
	}{
		{"first row", 10, 0, 50, 0, topPhase},
		{"just above middle", 10, 4, 50, 0, topPhase},
		{"at middle", 10, 5, 50, 0, middlePhase},
		{"scrolling", 10, 20, 50, 15, middlePhase},
		{"last middle row", 10, 44, 50, 39, middlePhase},
		{"bottom threshold", 10, 45, 50, 40, bottomPhase},
		{"last row", 10, 49, 50, 40, bottomPhase},
		{"short list", 10, 3, 4, 0, topPhase},
		{"empty list", 10, 0, 0, 0, topPhase},
		{"zero height", 0, 7, 50, 0, topPhase},
		{"single row window", 1, 7, 50, 7, middlePhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scrollOffset(tt.height, tt.cursor, tt.total); got != tt.wantOffset {
				t.Errorf("scrollOffset() = %d, want %d", got, tt.wantOffset)
			}

			if got := phaseOf(tt.height, tt.cursor, tt.total); got != tt.wantPhase {
				t.Errorf("phaseOf() = %v, want %v", got, tt.wantPhase)
			}
		})
	}
}

func TestScrollOffsetKeepsCursorVisible(t *testing.T) {
	const height, total = 8, 30

	for cursor := range total {
		off := scrollOffset(height, cursor, total)
		if cursor < off || cursor >= off+height {
			t.Fatalf("cursor %d outside window [%d,%d)", cursor, off, off+height)
		}
	}
}
