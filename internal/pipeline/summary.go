package pipeline

import (
	"fmt"
	"io"
	"sort"

	"seoggi/colors"
	"seoggi/internal/passes"
)

// PrintSummary writes a summary of the last run to w.
func (p *Pipeline) PrintSummary(w io.Writer) {
	fmt.Fprintln(w)
	colors.CYAN.Fprintln(w, "═══════════════════════════════════════")
	colors.CYAN.Fprintln(w, "        OPTIMIZATION SUMMARY")
	colors.CYAN.Fprintln(w, "═══════════════════════════════════════")

	fmt.Fprintf(w, "Run: %s\n", p.manager.RunID())
	fmt.Fprintf(w, "Module: %s (%s)\n", moduleName(p.module), p.phase)
	if p.module != nil {
		fmt.Fprintf(w, "Functions: %d\n", len(p.module.Functions))
	}
	fmt.Fprintln(w)

	stats := p.manager.Stats()
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	for _, st := range stats {
		fmt.Fprintf(w, " - %s\n", formatStats(st))
	}
}

func formatStats(st passes.PassStats) string {
	return fmt.Sprintf("%s: %d run(s), %d modified, %s", st.Name, st.Runs, st.Modified, st.Duration)
}
