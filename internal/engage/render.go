package engage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// DefaultSummaryLimit caps how many names the human summary lists before
// collapsing the rest into a count.
const DefaultSummaryLimit = 20

// AllEngagedMessage is rendered when nobody is left to report.
const AllEngagedMessage = "🎉 Everyone engaged (reacted or replied)!"

// Summarize renders up to limit names as a bulleted list, in the order
// given (sorted-by-ID order from the reconciliation), followed by an
// "…and N more" line when truncated. An empty list gets the celebratory
// message instead. A non-positive limit falls back to the default.
func Summarize(names []string, limit int) string {
	if len(names) == 0 {
		return AllEngagedMessage
	}
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}

	shown := names
	if len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	for i, n := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(n)
	}
	if extra := len(names) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "\n…and %d more", extra)
	}
	return b.String()
}

// CSV renders the complete non-engager list as a CSV export with a
// header row. Unlike the summary it is never truncated — this is the
// authoritative machine-readable artifact.
func CSV(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"user_id", "name"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, id := range r.NonEngagedIDs {
		if err := w.Write([]string{id, r.NonEngagedNames[i]}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
