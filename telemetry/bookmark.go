package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/memic/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkHypoxicCore     BookmarkType = "hypoxic_core"
	BookmarkConfluence      BookmarkType = "confluence"
	BookmarkPopulationCrash BookmarkType = "population_crash"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a run.
type BookmarkDetector struct {
	cfg   config.BookmarksConfig
	sites int

	// Rolling history (circular buffer)
	history     []TickStats
	historySize int
	historyIdx  int
	historyFull bool

	// Edge-triggered state
	extinct    bool
	hypoxic    bool
	confluent  bool
	recentPeak int
}

// NewBookmarkDetector creates a detector for a lattice of the given size.
func NewBookmarkDetector(cfg config.BookmarksConfig, sites, historySize int) *BookmarkDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &BookmarkDetector{
		cfg:         cfg,
		sites:       sites,
		history:     make([]TickStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats TickStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkHypoxicCore(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkConfluence(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkPopulationCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats TickStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []TickStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkExtinction(stats TickStats) *Bookmark {
	if stats.Population > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct || len(bd.getHistory()) == 0 {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.Tick,
		Description: "no live cells remain",
	}
}

func (bd *BookmarkDetector) checkHypoxicCore(stats TickStats) *Bookmark {
	if stats.Population == 0 || bd.cfg.HypoxicFraction <= 0 {
		return nil
	}
	frac := float64(stats.Hypoxic) / float64(stats.Population)
	if frac < bd.cfg.HypoxicFraction {
		bd.hypoxic = false
		return nil
	}
	if bd.hypoxic {
		return nil
	}
	bd.hypoxic = true
	return &Bookmark{
		Type:        BookmarkHypoxicCore,
		Tick:        stats.Tick,
		Description: fmt.Sprintf("%.0f%% of cells hypoxic (%d of %d)", frac*100, stats.Hypoxic, stats.Population),
	}
}

func (bd *BookmarkDetector) checkConfluence(stats TickStats) *Bookmark {
	if bd.sites == 0 || bd.cfg.ConfluenceFraction <= 0 {
		return nil
	}
	frac := float64(stats.Population) / float64(bd.sites)
	if frac < bd.cfg.ConfluenceFraction {
		bd.confluent = false
		return nil
	}
	if bd.confluent {
		return nil
	}
	bd.confluent = true
	return &Bookmark{
		Type:        BookmarkConfluence,
		Tick:        stats.Tick,
		Description: fmt.Sprintf("%.0f%% of sites occupied", frac*100),
	}
}

func (bd *BookmarkDetector) checkPopulationCrash(stats TickStats) *Bookmark {
	for _, h := range bd.getHistory() {
		if h.Population > bd.recentPeak {
			bd.recentPeak = h.Population
		}
	}
	if bd.recentPeak == 0 {
		return nil
	}

	drop := bd.recentPeak - stats.Population
	if drop < bd.cfg.CrashMinDrop {
		return nil
	}
	dropPct := float64(drop) / float64(bd.recentPeak)
	if dropPct < bd.cfg.CrashDropPercent {
		return nil
	}

	b := &Bookmark{
		Type:        BookmarkPopulationCrash,
		Tick:        stats.Tick,
		Description: fmt.Sprintf("population fell %.0f%% from %d to %d", dropPct*100, bd.recentPeak, stats.Population),
	}
	// Restart peak tracking so one crash is reported once.
	bd.recentPeak = stats.Population
	bd.history = make([]TickStats, bd.historySize)
	bd.historyIdx = 0
	bd.historyFull = false
	return b
}
