package diff_test

import (
	"testing"

	"github.com/prtriage/prtriage/internal/diff"
)

// mapperFixture is a single file whose hunk is "@@ -10,3 +10,4 @@" with
// content [" a", "+b", " c", " d"].
const mapperFixture = `diff --git a/pkg/thing.go b/pkg/thing.go
--- a/pkg/thing.go
+++ b/pkg/thing.go
@@ -10,3 +10,4 @@
 a
+b
 c
 d
`

func TestMapLine_ContentOrdinalAddition(t *testing.T) {
	files := diff.Parse(mapperFixture)

	// Ordinal 2 is the "+b" line; one new-side line (" a") precedes it.
	if got := diff.MapLine(files, "pkg/thing.go", 2); got != 11 {
		t.Errorf("MapLine(ordinal 2) = %d, want 11", got)
	}
}

func TestMapLine_ContentOrdinalContext(t *testing.T) {
	files := diff.Parse(mapperFixture)

	// Ordinal 1 is the leading context line " a" at new line 10.
	if got := diff.MapLine(files, "pkg/thing.go", 1); got != 10 {
		t.Errorf("MapLine(ordinal 1) = %d, want 10", got)
	}
	// Ordinal 3 is " c": two new-side lines precede it.
	if got := diff.MapLine(files, "pkg/thing.go", 3); got != 12 {
		t.Errorf("MapLine(ordinal 3) = %d, want 12", got)
	}
}

func TestMapLine_ContentOrdinalDeletion(t *testing.T) {
	patch := `diff --git a/f.go b/f.go
+++ b/f.go
@@ -5,2 +5,2 @@
-x
+y
`
	files := diff.Parse(patch)

	// Ordinal 1 is the "-x" deletion; no old-side lines precede it, so the
	// mapped value is OldStart+0.
	if got := diff.MapLine(files, "f.go", 1); got != 5 {
		t.Errorf("MapLine(ordinal 1) = %d, want 5", got)
	}
}

func TestMapLine_OrdinalSpansHunks(t *testing.T) {
	patch := `diff --git a/f.go b/f.go
+++ b/f.go
@@ -1,2 +1,2 @@
 keep
-drop
@@ -40,2 +40,3 @@
 ctx
+added
 ctx2
`
	files := diff.Parse(patch)

	// Ordinal 4 lands on "+added" in the second hunk. Counters reset per
	// hunk: one new-side line ("ctx") precedes it there.
	if got := diff.MapLine(files, "f.go", 4); got != 41 {
		t.Errorf("MapLine(ordinal 4) = %d, want 41", got)
	}
}

func TestMapLine_OldRangeRebased(t *testing.T) {
	files := diff.Parse(mapperFixture)

	// 12 exceeds the 4 content ordinals, and falls in the old range [10,13):
	// offset 2 re-based onto the new range gives 12.
	if got := diff.MapLine(files, "pkg/thing.go", 12); got != 12 {
		t.Errorf("MapLine(12) = %d, want 12", got)
	}
}

func TestMapLine_NewRangeRoundTrip(t *testing.T) {
	files := diff.Parse(mapperFixture)

	// 13 is past the old range [10,13) but inside the new range [10,14):
	// already a valid new-file line, returned unchanged.
	if got := diff.MapLine(files, "pkg/thing.go", 13); got != 13 {
		t.Errorf("MapLine(13) = %d, want 13", got)
	}
}

func TestMapLine_Idempotent(t *testing.T) {
	files := diff.Parse(mapperFixture)

	// Once a value is in new-file coordinates (and beyond the content
	// ordinals), mapping is a fixed point.
	first := diff.MapLine(files, "pkg/thing.go", 13)
	second := diff.MapLine(files, "pkg/thing.go", first)
	if first != second {
		t.Errorf("mapping not idempotent: %d then %d", first, second)
	}
}

func TestMapLine_UnknownPathFallsBack(t *testing.T) {
	files := diff.Parse(mapperFixture)

	if got := diff.MapLine(files, "not/in/diff.go", 42); got != 42 {
		t.Errorf("MapLine(unknown path) = %d, want 42", got)
	}
}

func TestMapLine_NoInterpretationFallsBack(t *testing.T) {
	files := diff.Parse(mapperFixture)

	// 999 matches no ordinal and no range.
	if got := diff.MapLine(files, "pkg/thing.go", 999); got != 999 {
		t.Errorf("MapLine(999) = %d, want 999", got)
	}
	if got := diff.MapLine(files, "pkg/thing.go", 0); got != 0 {
		t.Errorf("MapLine(0) = %d, want 0", got)
	}
}
