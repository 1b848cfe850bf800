package engage

import (
	"context"
	"fmt"

	"github.com/crewsight/nonengage/internal/slack"
)

// Directory maps every known member ID to its profile record. It is
// fetched fresh for each computation and never cached across runs.
type Directory map[string]slack.Member

// loadDirectory drains the directory listing. The whole directory is
// fetched unconditionally even for small channels.
func (e *Engine) loadDirectory(ctx context.Context) (Directory, error) {
	dir := make(Directory)
	for page, err := range Pages(ctx, e.api.UsersList) {
		if err != nil {
			return nil, fmt.Errorf("list directory: %w", err)
		}
		for _, m := range page {
			dir[m.ID] = m
		}
	}
	return dir, nil
}

// FormatName resolves a human-readable name for a member. Precedence:
// display name when present and different from the real name (rendered as
// "display (real)"), then display name, real name, handle, ID, and
// finally the literal "unknown".
func FormatName(m *slack.Member) string {
	if m == nil {
		return "unknown"
	}

	display := m.Profile.DisplayNameNormalized
	if display == "" {
		display = m.Profile.DisplayName
	}
	real := m.Profile.RealNameNormalized
	if real == "" {
		real = m.Profile.RealName
	}

	switch {
	case display != "" && real != "" && display != real:
		return fmt.Sprintf("%s (%s)", display, real)
	case display != "":
		return display
	case real != "":
		return real
	case m.Name != "":
		return m.Name
	case m.ID != "":
		return m.ID
	}
	return "unknown"
}

// Name looks up id in the directory and resolves its display name.
func (d Directory) Name(id string) string {
	if m, ok := d[id]; ok {
		return FormatName(&m)
	}
	return "unknown"
}
