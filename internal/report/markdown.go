package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeRun(md, summary)
	w.writeRecentThreads(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with forum information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Forum Mirror Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Forum", "`" + summary.ForumURL + "`"},
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on the summary state.
func (w *MarkdownWriter) statusText(summary *Summary) string {
	if summary.Interrupted {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Complete"
}

// writeCounts writes the stored entity totals section.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *Summary) {
	md.H2("Stored Entities")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Count"},
		Rows: [][]string{
			{"Users", strconv.FormatInt(summary.Counts.Users, 10)},
			{"Rooms", strconv.FormatInt(summary.Counts.Rooms, 10)},
			{"Threads", strconv.FormatInt(summary.Counts.Threads, 10)},
			{"Posts", strconv.FormatInt(summary.Counts.Posts, 10)},
		},
	})
	md.PlainText("")

	if summary.Counts.Posts > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of the entity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Stored Entity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.Counts.Users > 0 {
		chart.LabelAndIntValue("Users", uint64(summary.Counts.Users))
	}
	if summary.Counts.Threads > 0 {
		chart.LabelAndIntValue("Threads", uint64(summary.Counts.Threads))
	}
	if summary.Counts.Posts > 0 {
		chart.LabelAndIntValue("Posts", uint64(summary.Counts.Posts))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRun writes the per-run counters section.
func (w *MarkdownWriter) writeRun(md *markdown.Markdown, summary *Summary) {
	if summary.Run == nil {
		return
	}
	run := summary.Run

	md.H2("This Run")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Rooms visited", strconv.Itoa(run.RoomsVisited)},
			{"Pages fetched", strconv.Itoa(run.PagesFetched)},
			{"Posts created", strconv.Itoa(run.PostsCreated)},
			{"Posts skipped", strconv.Itoa(run.PostsSkipped)},
			{"Users created", strconv.Itoa(run.UsersCreated)},
			{"Threads fresh", strconv.Itoa(run.ThreadsFresh)},
			{"Threads moved", strconv.Itoa(run.ThreadsMoved)},
			{"Structural errors", strconv.Itoa(run.StructuralErrors)},
			{"Data errors", strconv.Itoa(run.DataErrors)},
		},
	})
	md.PlainText("")

	switch {
	case run.StructuralErrors > 0:
		md.Warningf(
			"%d room(s) abandoned because an expected page structure was missing.",
			run.StructuralErrors,
		)
	case run.DataErrors > 0:
		md.Note(fmt.Sprintf(
			"%d post(s) or thread(s) skipped because of malformed data.",
			run.DataErrors,
		))
	default:
		md.Tip("Run completed without structural or data errors.")
	}
	md.PlainText("")
}

// writeRecentThreads writes the recent activity section.
func (w *MarkdownWriter) writeRecentThreads(md *markdown.Markdown, summary *Summary) {
	md.H2("Recent Activity")
	md.PlainText("")

	if len(summary.RecentThreads) == 0 {
		md.PlainText("No threads stored.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.RecentThreads))
	for _, t := range summary.RecentThreads {
		rows = append(rows, []string{
			t.Thread.Name,
			t.RoomName,
			strconv.FormatInt(t.PostCount, 10),
			t.LastPosted.Format("2006-01-02 15:04:05"),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Thread", "Room", "Posts", "Last Post"},
		Rows:   rows,
	})
	md.PlainText("")
}
