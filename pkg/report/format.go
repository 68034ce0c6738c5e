package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

// 🎨 display layout
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 45 // base width for paths
)

// 📝 Format writes the human-readable run summary. Modified files come
// first in resolver order with the rules that touched each, then
// conflicts, then the error list. verbose adds the per-rule hit table.
func Format(w io.Writer, rep *RunReport, verbose bool) {
	bold := color.New(color.Bold)

	fmt.Fprintf(w, "%s %d files scanned, %d modified\n",
		bold.Sprint("summary:"),
		rep.FilesScanned,
		rep.FilesModified)

	for _, f := range rep.Modified {
		fmt.Fprintf(w, "%*s%s %-*s %s\n",
			fileIndent, "",
			color.New(color.FgBlue).Sprint("⟳"),
			nameWidth, f.Path,
			color.New(color.Faint).Sprint(joinRules(f.RuleIDs)))
	}

	if verbose && len(rep.PerRuleHits) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold.Sprint("rule hits:"))
		ids := make([]string, 0, len(rep.PerRuleHits))
		for id := range rep.PerRuleHits {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if rep.PerRuleHits[id] == 0 {
				continue
			}
			fmt.Fprintf(w, "%*s%-*s %d\n",
				fileIndent, "", nameWidth, id, rep.PerRuleHits[id])
		}
	}

	if len(rep.Conflicts) > 0 {
		fmt.Fprintf(w, "\n%s\n", color.New(color.FgYellow, color.Bold).Sprint("conflicts:"))
		for _, c := range rep.Conflicts {
			fmt.Fprintf(w, "%*s%s %s: %s overlaps %s at offset %d\n",
				fileIndent, "",
				color.New(color.FgYellow).Sprint("!"),
				c.Path, c.SkippedRule, c.AppliedRule, c.Offset)
		}
	}

	if len(rep.Errors) > 0 {
		fmt.Fprintf(w, "\n%s\n", color.New(color.FgRed, color.Bold).Sprint("errors:"))
		for _, e := range rep.Errors {
			where := e.Path
			if e.RuleID != "" {
				where = fmt.Sprintf("%s (%s)", e.Path, e.RuleID)
			}
			fmt.Fprintf(w, "%*s%s %s: %s\n",
				fileIndent, "",
				color.New(color.FgRed).Sprint("✗"),
				where, e.Cause)
		}
	}
}

func joinRules(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}
