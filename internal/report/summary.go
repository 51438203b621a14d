package report

import (
	"time"

	"github.com/nao1215/forummirror/internal/crawl"
	"github.com/nao1215/forummirror/internal/database"
)

// Summary is the data a mirror run or a stats query reports on.
// It combines stored entity totals with optional per-run counters.
type Summary struct {
	// ForumURL is the forum the mirror targets.
	ForumURL string `json:"forumURL"`

	// GeneratedAt is when the summary was produced.
	GeneratedAt time.Time `json:"generatedAt"`

	// Counts holds the totals of all stored entities.
	Counts database.Counts `json:"counts"`

	// Run holds the counters of the mirror run that produced this
	// summary. It is nil when the summary was generated from the
	// store alone, without crawling.
	Run *crawl.Stats `json:"run,omitempty"`

	// Interrupted reports whether the run was cut short by a signal
	// or context cancellation. Totals still reflect everything stored
	// up to that point.
	Interrupted bool `json:"interrupted,omitempty"`

	// RecentThreads lists the most recently active stored threads.
	RecentThreads []database.ThreadSummary `json:"recentThreads,omitempty"`
}

// NewSummary creates a Summary for the given forum with the given totals.
func NewSummary(forumURL string, counts database.Counts) *Summary {
	return &Summary{
		ForumURL:    forumURL,
		GeneratedAt: time.Now().UTC(),
		Counts:      counts,
	}
}

// WithRun attaches per-run counters to the summary.
func (s *Summary) WithRun(stats crawl.Stats, interrupted bool) *Summary {
	s.Run = &stats
	s.Interrupted = interrupted
	return s
}

// WithRecentThreads attaches the recent thread listing to the summary.
func (s *Summary) WithRecentThreads(threads []database.ThreadSummary) *Summary {
	s.RecentThreads = threads
	return s
}
