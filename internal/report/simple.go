package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display after a mirror run.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeRun(&sb, summary)
	w.writeRecentThreads(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with forum information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        FORUM MIRROR SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Forum:          %s\n", summary.ForumURL))
	sb.WriteString(fmt.Sprintf("Generated:      %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))

	if summary.Interrupted {
		sb.WriteString("Status:         INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeCounts writes the stored entity totals section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STORED ENTITIES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Users:    %d\n", summary.Counts.Users))
	sb.WriteString(fmt.Sprintf("  Rooms:    %d\n", summary.Counts.Rooms))
	sb.WriteString(fmt.Sprintf("  Threads:  %d\n", summary.Counts.Threads))
	sb.WriteString(fmt.Sprintf("  Posts:    %d\n", summary.Counts.Posts))
	sb.WriteString("\n")
}

// writeRun writes the per-run counters section.
func (w *SimpleWriter) writeRun(sb *strings.Builder, summary *Summary) {
	if summary.Run == nil {
		return
	}
	run := summary.Run

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("THIS RUN\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Rooms visited:     %d\n", run.RoomsVisited))
	sb.WriteString(fmt.Sprintf("  Pages fetched:     %d\n", run.PagesFetched))
	sb.WriteString(fmt.Sprintf("  Posts created:     %d\n", run.PostsCreated))
	sb.WriteString(fmt.Sprintf("  Posts skipped:     %d\n", run.PostsSkipped))
	sb.WriteString(fmt.Sprintf("  Users created:     %d\n", run.UsersCreated))
	sb.WriteString(fmt.Sprintf("  Threads fresh:     %d\n", run.ThreadsFresh))
	sb.WriteString(fmt.Sprintf("  Threads moved:     %d\n", run.ThreadsMoved))

	if w.verbose || run.StructuralErrors > 0 || run.DataErrors > 0 {
		sb.WriteString(fmt.Sprintf("  Structural errors: %d\n", run.StructuralErrors))
		sb.WriteString(fmt.Sprintf("  Data errors:       %d\n", run.DataErrors))
	}
	sb.WriteString("\n")
}

// writeRecentThreads writes the recent activity section.
func (w *SimpleWriter) writeRecentThreads(sb *strings.Builder, summary *Summary) {
	if len(summary.RecentThreads) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RECENT ACTIVITY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.RecentThreads) == 0 {
		sb.WriteString("  No threads stored\n")
	} else {
		for _, t := range summary.RecentThreads {
			sb.WriteString(fmt.Sprintf("  * %s [%s]\n", t.Thread.Name, t.RoomName))
			sb.WriteString(fmt.Sprintf("    %d posts, last %s\n",
				t.PostCount, t.LastPosted.Format("2006-01-02 15:04:05")))
		}
	}
	sb.WriteString("\n")
}
