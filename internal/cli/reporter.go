package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// Reporter renders migration progress and results to a terminal.
type Reporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{writer: w}
}

// Progress advances the progress bar, creating it on first call.
func (r *Reporter) Progress(done, total int) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(r.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Resolving accounts...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(r.writer); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
	}
	if err := r.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// ShowResult renders the migration result summary.
func (r *Reporter) ShowResult(result *model.MigrationResult) {
	var b strings.Builder

	fmt.Fprintf(&b, "Run ID:  %s\n", result.RunID)
	fmt.Fprintf(&b, "Mode:    %s\n\n", result.Mode)

	fmt.Fprintf(&b, "%s\n", FormatSuccess(fmt.Sprintf("%d ready", result.Mapped)))
	fmt.Fprintf(&b, "%s\n", FormatWarning(fmt.Sprintf("%d need manual review", result.ManualReview)))
	fmt.Fprintf(&b, "%s\n", FormatError(fmt.Sprintf("%d conflicts", result.Conflicts)))

	if len(result.Summary.ByResolvedType) > 0 {
		b.WriteString("\nResolved types:\n")
		for _, line := range typeLines(result.Summary.ByResolvedType) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	if result.BulkCreation != nil {
		fmt.Fprintf(&b, "\nCreated %d, skipped %d, failed %d\n",
			result.BulkCreation.Created,
			result.BulkCreation.Skipped,
			result.BulkCreation.Failed)
	}

	if _, err := fmt.Fprintln(r.writer, RenderBox("Migration Summary", strings.TrimRight(b.String(), "\n"))); err != nil {
		slog.Warn("Failed to write summary box", "error", err)
	}

	r.showConflicts(result)
}

func (r *Reporter) showConflicts(result *model.MigrationResult) {
	conflicts := result.ConflictsRequiringAttention
	if len(conflicts) == 0 {
		return
	}

	var b strings.Builder
	for _, m := range conflicts {
		fmt.Fprintf(&b, "%s %s -> %s  %s\n",
			m.Original.OriginalCode,
			m.Original.OriginalName,
			m.Suggested.Code,
			SubtleStyle.Render(strings.Join(m.Conflicts, "; ")))
	}

	if _, err := fmt.Fprintln(r.writer, RenderBox("Conflicts Requiring Attention", strings.TrimRight(b.String(), "\n"))); err != nil {
		slog.Warn("Failed to write conflicts box", "error", err)
	}
}

func typeLines(byType map[model.AccountType]int) []string {
	lines := make([]string, 0, len(byType))
	for _, t := range model.AllAccountTypes() {
		if count, ok := byType[t]; ok {
			lines = append(lines, fmt.Sprintf("%-22s %d", string(t), count))
		}
	}
	// Unknown types sort after the canonical ones.
	var extra []string
	for t, count := range byType {
		if !t.Valid() {
			extra = append(extra, fmt.Sprintf("%-22s %d", string(t), count))
		}
	}
	sort.Strings(extra)
	return append(lines, extra...)
}
