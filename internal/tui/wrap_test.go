package tui

import (
	"reflect"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextFits(t *testing.T) {
	got := wrapText("사과이/가 있습니다.", 40)
	if !reflect.DeepEqual(got, []string{"사과이/가 있습니다."}) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextBreaksOnSpaces(t *testing.T) {
	// Each Hangul syllable is two cells wide.
	got := wrapText("이것은 정말 크다아요/어요.", 16)
	want := []string{"이것은 정말", "크다아요/어요."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for _, line := range got {
		if w := runewidth.StringWidth(line); w > 16 {
			t.Fatalf("line %q too wide: %d", line, w)
		}
	}
}

func TestWrapTextSplitsLongWord(t *testing.T) {
	got := wrapText("비행기비행기", 6)
	want := []string{"비행기", "비행기"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextZeroWidth(t *testing.T) {
	got := wrapText("a b c", 0)
	if !reflect.DeepEqual(got, []string{"a b c"}) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
