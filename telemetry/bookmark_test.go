package telemetry

import (
	"testing"

	"github.com/pthm-cable/memic/config"
)

func testBookmarksConfig() config.BookmarksConfig {
	return config.BookmarksConfig{
		HypoxicFraction:    0.25,
		ConfluenceFraction: 0.9,
		CrashDropPercent:   0.3,
		CrashMinDrop:       20,
	}
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(testBookmarksConfig(), 1000, 10)

	bd.Check(TickStats{Tick: 0, Population: 5})
	bookmarks := bd.Check(TickStats{Tick: 1, Population: 0})
	if !hasBookmark(bookmarks, BookmarkExtinction) {
		t.Fatal("expected extinction bookmark")
	}

	// Edge triggered: staying extinct does not fire again
	bookmarks = bd.Check(TickStats{Tick: 2, Population: 0})
	if hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("extinction should fire once")
	}
}

func TestBookmarkDetector_NoExtinctionOnFirstTick(t *testing.T) {
	bd := NewBookmarkDetector(testBookmarksConfig(), 1000, 10)
	if hasBookmark(bd.Check(TickStats{Tick: 0}), BookmarkExtinction) {
		t.Error("empty first tick should not count as extinction")
	}
}

func TestBookmarkDetector_HypoxicCore(t *testing.T) {
	bd := NewBookmarkDetector(testBookmarksConfig(), 1000, 10)

	if hasBookmark(bd.Check(TickStats{Tick: 0, Population: 100, Hypoxic: 10}), BookmarkHypoxicCore) {
		t.Error("10% hypoxic should not trigger")
	}
	if !hasBookmark(bd.Check(TickStats{Tick: 1, Population: 100, Hypoxic: 40}), BookmarkHypoxicCore) {
		t.Error("expected hypoxic_core bookmark at 40%")
	}
	if hasBookmark(bd.Check(TickStats{Tick: 2, Population: 100, Hypoxic: 50}), BookmarkHypoxicCore) {
		t.Error("hypoxic_core should not repeat while above threshold")
	}
	bd.Check(TickStats{Tick: 3, Population: 100, Hypoxic: 0})
	if !hasBookmark(bd.Check(TickStats{Tick: 4, Population: 100, Hypoxic: 30}), BookmarkHypoxicCore) {
		t.Error("hypoxic_core should re-arm after recovering")
	}
}

func TestBookmarkDetector_Confluence(t *testing.T) {
	bd := NewBookmarkDetector(testBookmarksConfig(), 100, 10)

	if hasBookmark(bd.Check(TickStats{Tick: 0, Population: 50}), BookmarkConfluence) {
		t.Error("half full should not trigger")
	}
	if !hasBookmark(bd.Check(TickStats{Tick: 1, Population: 95}), BookmarkConfluence) {
		t.Error("expected confluence bookmark")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(testBookmarksConfig(), 10000, 10)

	for i := 0; i < 5; i++ {
		bd.Check(TickStats{Tick: i, Population: 100})
	}

	bookmarks := bd.Check(TickStats{Tick: 5, Population: 50})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Fatal("expected population_crash bookmark")
	}

	// Peak resets after a crash
	bookmarks = bd.Check(TickStats{Tick: 6, Population: 45})
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("crash should not repeat from the old peak")
	}
}

func TestBookmarkDetector_SmallDropIgnored(t *testing.T) {
	bd := NewBookmarkDetector(testBookmarksConfig(), 10000, 10)

	for i := 0; i < 5; i++ {
		bd.Check(TickStats{Tick: i, Population: 40})
	}
	bookmarks := bd.Check(TickStats{Tick: 5, Population: 30})
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("drop of 10 cells should be ignored")
	}
}
