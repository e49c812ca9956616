package domain

import "testing"

func TestSpan_ValidFor(t *testing.T) {
	t.Parallel()

	s := "本を読んだ"

	tests := []struct {
		name string
		span Span
		want bool
	}{
		{"full string", Span{0, len(s)}, true},
		{"empty at start", Span{0, 0}, true},
		{"empty at end", Span{len(s), len(s)}, true},
		{"negative start", Span{-1, 3}, false},
		{"end past string", Span{0, len(s) + 1}, false},
		{"inverted", Span{4, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.span.ValidFor(s); got != tt.want {
				t.Errorf("Span%+v.ValidFor(%q) = %v, want %v", tt.span, s, got, tt.want)
			}
		})
	}
}
