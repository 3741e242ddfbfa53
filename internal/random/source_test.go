package random

import (
	"testing"

	apperrors "github.com/neetkit/cardforge/internal/platform/errors"
)

func drawSequence(src *Source, n int) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, src.IntRange(0, 1_000_000))
	}
	return out
}

func TestSourceDeterministicForSeed(t *testing.T) {
	t.Parallel()

	a := drawSequence(NewSource(42), 64)
	b := drawSequence(NewSource(42), 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d = %d, want %d", i, b[i], a[i])
		}
	}
}

func TestSourceDiffersAcrossSeeds(t *testing.T) {
	t.Parallel()

	a := drawSequence(NewSource(1), 16)
	b := drawSequence(NewSource(2), 16)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different sequences for different seeds")
	}
}

func TestReseedRestartsSequence(t *testing.T) {
	t.Parallel()

	src := NewSource(7)
	first := drawSequence(src, 8)
	src.IntRange(0, 10)

	src.Reseed(7)
	again := drawSequence(src, 8)
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("draw %d after reseed = %d, want %d", i, again[i], first[i])
		}
	}
	if src.Seed() != 7 {
		t.Fatalf("seed = %d, want 7", src.Seed())
	}

	src.Reseed(9)
	if src.Seed() != 9 {
		t.Fatalf("seed = %d, want 9", src.Seed())
	}
}

func TestSaveRestoreRewindsStream(t *testing.T) {
	t.Parallel()

	src := NewSource(7)
	drawSequence(src, 3)
	state, err := src.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := drawSequence(src, 5)

	src.Reseed(11)
	drawSequence(src, 2)
	if err := src.Restore(state); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if src.Seed() != 7 {
		t.Fatalf("seed = %d, want 7", src.Seed())
	}
	got := drawSequence(src, 5)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d after restore = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestIntRangeBounds(t *testing.T) {
	t.Parallel()

	src := NewSource(3)
	seenLow, seenHigh := false, false
	for i := 0; i < 2000; i++ {
		v := src.IntRange(1, 4)
		if v < 1 || v > 4 {
			t.Fatalf("IntRange(1, 4) = %d out of bounds", v)
		}
		seenLow = seenLow || v == 1
		seenHigh = seenHigh || v == 4
	}
	if !seenLow || !seenHigh {
		t.Fatalf("expected inclusive bounds to be reachable, low=%v high=%v", seenLow, seenHigh)
	}
}

func TestIntRangeDegenerateDoesNotAdvance(t *testing.T) {
	t.Parallel()

	a := NewSource(11)
	b := NewSource(11)
	if got := a.IntRange(5, 5); got != 5 {
		t.Fatalf("IntRange(5, 5) = %d, want 5", got)
	}
	if got := a.IntRange(9, 2); got != 9 {
		t.Fatalf("IntRange(9, 2) = %d, want 9", got)
	}
	if a.IntRange(0, 100) != b.IntRange(0, 100) {
		t.Fatal("degenerate ranges advanced the stream")
	}
}

func TestFloatRangeBounds(t *testing.T) {
	t.Parallel()

	src := NewSource(5)
	for i := 0; i < 500; i++ {
		v := src.FloatRange(0, 100)
		if v < 0 || v >= 100 {
			t.Fatalf("FloatRange(0, 100) = %v out of bounds", v)
		}
	}
	if got := src.FloatRange(3, 3); got != 3 {
		t.Fatalf("FloatRange(3, 3) = %v, want 3", got)
	}
}

func TestChoose(t *testing.T) {
	t.Parallel()

	src := NewSource(13)
	if _, ok := Choose(src, []string{}); ok {
		t.Fatal("expected empty choice to report false")
	}

	items := []string{"www", "dev", "app", "secure"}
	for i := 0; i < 100; i++ {
		got, ok := Choose(src, items)
		if !ok {
			t.Fatal("expected choice")
		}
		found := false
		for _, item := range items {
			found = found || item == got
		}
		if !found {
			t.Fatalf("Choose returned %q outside the pool", got)
		}
	}
}

func TestNewUnseededSourceRecordsSeed(t *testing.T) {
	t.Parallel()

	src, err := NewUnseededSource()
	if err != nil {
		t.Fatalf("new unseeded source: %v", err)
	}
	replay := NewSource(src.Seed())
	if src.IntRange(0, 1<<30) != replay.IntRange(0, 1<<30) {
		t.Fatal("recorded seed does not reproduce the stream")
	}
}

func TestParseSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		wantSeed uint32
		wantOK   bool
		wantCode apperrors.Code
	}{
		{raw: "", wantOK: false},
		{raw: "-1", wantOK: false},
		{raw: "0", wantSeed: 0, wantOK: true},
		{raw: " 42 ", wantSeed: 42, wantOK: true},
		{raw: "4294967295", wantSeed: 4294967295, wantOK: true},
		{raw: "4294967296", wantCode: apperrors.CodeSeedOutOfRange},
		{raw: "forty", wantCode: apperrors.CodeSeedOutOfRange},
	}
	for _, tt := range tests {
		seed, ok, err := ParseSeed(tt.raw)
		if tt.wantCode != "" {
			if got := apperrors.CodeOf(err); got != tt.wantCode {
				t.Fatalf("ParseSeed(%q) code = %q, want %q", tt.raw, got, tt.wantCode)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSeed(%q): %v", tt.raw, err)
		}
		if ok != tt.wantOK || seed != tt.wantSeed {
			t.Fatalf("ParseSeed(%q) = (%d, %v), want (%d, %v)", tt.raw, seed, ok, tt.wantSeed, tt.wantOK)
		}
	}
}
