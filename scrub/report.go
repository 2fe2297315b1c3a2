package scrub

import (
	"fmt"
	"strings"

	"github.com/ByteMirror/gitscrub/gitcfg"
	"github.com/ByteMirror/gitscrub/log"

	"github.com/charmbracelet/lipgloss"
)

// Banner is the literal line printed before the remaining configuration.
const Banner = "Remaining global git configurations:"

// OpStatus is the outcome of a single operation.
type OpStatus int

const (
	// StatusApplied means the store accepted the operation.
	StatusApplied OpStatus = iota
	// StatusSkipped means an unset found the key already absent.
	StatusSkipped
	// StatusFailed means the store reported an unexpected error; the
	// sequence continued regardless.
	StatusFailed
)

func (s OpStatus) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// OpResult pairs an operation with its outcome.
type OpResult struct {
	Op     Operation
	Status OpStatus
	Err    string
}

// Report is the outcome of a full scrub run: one result per operation, then
// the store listing taken after the last operation.
type Report struct {
	Results   []OpResult
	Remaining []gitcfg.Entry
}

// Failed reports whether any operation hit an unexpected error.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Listing is the exact output contract: the banner line followed by the
// remaining configuration as key=value lines, one per entry.
func (r *Report) Listing() string {
	var b strings.Builder
	b.WriteString(Banner + "\n")
	for _, e := range r.Remaining {
		b.WriteString(e.Key + "=" + e.Value + "\n")
	}
	return b.String()
}

var (
	appliedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Render returns the styled per-operation result lines followed by the
// listing.
func (r *Report) Render() string {
	return r.RenderOps() + "\n" + r.Listing()
}

// RenderOps returns the styled per-operation result lines. Key names are
// sanitized so url alias entries never leak an embedded credential to the
// terminal.
func (r *Report) RenderOps() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Scrubbing global git configuration") + "\n")
	for _, res := range r.Results {
		key := log.SanitizeKey(res.Op.Key)
		switch res.Status {
		case StatusApplied:
			if res.Op.Kind == OpSet {
				b.WriteString(appliedStyle.Render(fmt.Sprintf("✅ set %s = %s", key, res.Op.Value)) + "\n")
			} else {
				b.WriteString(appliedStyle.Render("✅ unset "+key) + "\n")
			}
		case StatusSkipped:
			b.WriteString(skippedStyle.Render("– "+key+" (not set)") + "\n")
		default:
			b.WriteString(failedStyle.Render(fmt.Sprintf("❌ %s %s: %s", res.Op.Kind, key, res.Err)) + "\n")
		}
	}
	return b.String()
}
