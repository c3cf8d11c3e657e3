package utils

import (
	"testing"
	"unicode/utf8"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		want      []string
	}{
		{
			name:      "short text stays whole",
			text:      "hi",
			chunkSize: 10,
			overlap:   2,
			want:      []string{"hi"},
		},
		{
			name:      "exact fit stays whole",
			text:      "abcd",
			chunkSize: 4,
			overlap:   1,
			want:      []string{"abcd"},
		},
		{
			name:      "overlapping windows",
			text:      "abcdefghij",
			chunkSize: 4,
			overlap:   2,
			want:      []string{"abcd", "cdef", "efgh", "ghij"},
		},
		{
			name:      "overlap larger than chunk falls back to no overlap",
			text:      "abcdefghij",
			chunkSize: 3,
			overlap:   5,
			want:      []string{"abc", "def", "ghi", "j"},
		},
		{
			name:      "multibyte runes never split",
			text:      "ééééé",
			chunkSize: 2,
			overlap:   1,
			want:      []string{"éé", "éé", "éé", "éé"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitText(tt.text, tt.chunkSize, tt.overlap)

			if len(got) != len(tt.want) {
				t.Fatalf("chunk count = %d, want %d (%q)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk[%d] = %q, want %q", i, got[i], tt.want[i])
				}
				if !utf8.ValidString(got[i]) {
					t.Errorf("chunk[%d] = %q is not valid UTF-8", i, got[i])
				}
			}
		})
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog, again and again and again."

	chunks := SplitText(text, 16, 4)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The last chunk must end exactly where the input ends.
	last := chunks[len(chunks)-1]
	if text[len(text)-len(last):] != last {
		t.Errorf("last chunk %q does not close the input", last)
	}

	// Consecutive chunks repeat the configured overlap.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		if len(prev) < 4 || len(curr) < 4 {
			continue
		}
		tail := string(prev[len(prev)-4:])
		head := string(curr[:4])
		if tail != head {
			t.Errorf("chunk %d does not overlap its predecessor: tail %q, head %q", i, tail, head)
		}
	}
}
