package domain

import (
	"errors"
	"testing"
)

func TestNewTerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headword string
		reading  string
		wantErr  bool
	}{
		{"both sides", "読む", "よむ", false},
		{"headword only", "読む", "", false},
		{"reading only", "", "よむ", false},
		{"both empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			term, err := NewTerm(tt.headword, tt.reading)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if term.Headword != tt.headword || term.Reading != tt.reading {
				t.Fatalf("unexpected term %+v", term)
			}
		})
	}
}

func TestTerm_Matches(t *testing.T) {
	t.Parallel()

	term := Term{Headword: "読む", Reading: "よむ"}

	if !term.Matches("読む") {
		t.Error("expected match on headword")
	}
	if !term.Matches("よむ") {
		t.Error("expected match on reading")
	}
	if term.Matches("食べる") {
		t.Error("unexpected match")
	}

	readingOnly := Term{Reading: "よむ"}
	if readingOnly.Matches("") {
		t.Error("empty lemma must not match empty headword")
	}
}

func TestTerm_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		term Term
		want string
	}{
		{Term{Headword: "読む", Reading: "よむ"}, "読む (よむ)"},
		{Term{Headword: "読む"}, "読む"},
		{Term{Reading: "よむ"}, "よむ"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("Term%+v.String() = %q, want %q", tt.term, got, tt.want)
		}
	}
}
