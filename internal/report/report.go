// Package report prints window plans and pool statistics for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/windows"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
)

// Column widths of the per-edge table.
var columns = []int{6, 9, 9, 8, 9, 8}

var headers = []string{"edge", "length", "windows", "width", "spacing", "ratio"}

func row(style lipgloss.Style, cells ...string) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, c := range cells {
		b.WriteString(style.Width(columns[i]).Render(c))
	}
	return strings.TrimRight(b.String(), " ")
}

// Building writes one building's plan: a header line, one row per edge and
// the window total.
func Building(w io.Writer, b building.Building, plan windows.Plan) {
	fmt.Fprintln(w, styleTitle.Render(string(b.ID))+" "+styleDim.Render(fmt.Sprintf(
		"%d edges · %d floors × %.2fm · target ratio %.2f",
		len(plan.Edges), b.Floors, b.FloorHeight, b.WindowToWallRatio)))

	if len(plan.Edges) == 0 {
		fmt.Fprintln(w, "  "+styleWarning.Render("degenerate footprint, no windows"))
		return
	}
	fmt.Fprintln(w, row(styleHeader, headers...))
	for _, e := range plan.Edges {
		idx, length := fmt.Sprintf("%d", e.Edge.Index), fmt.Sprintf("%.2f", e.Edge.Length)
		switch {
		case e.Short:
			fmt.Fprintln(w, row(styleDim, idx, length, "short"))
		case !e.Solved:
			fmt.Fprintln(w, row(styleWarning, idx, length, "none"))
		default:
			r := e.Result
			fmt.Fprintln(w, row(styleValue, idx, length,
				fmt.Sprintf("%d", e.Windows),
				fmt.Sprintf("%.2f", r.Width),
				fmt.Sprintf("%.2f", r.Spacing),
				fmt.Sprintf("%.3f", r.Ratio),
			))
		}
	}
	fmt.Fprintln(w, "  "+styleNumber.Render(fmt.Sprintf("%d", plan.Windows()))+" windows")
}

// Stats writes the pool summary.
func Stats(w io.Writer, s memory.Stats) {
	util := 0.0
	if s.Capacity > 0 {
		util = float64(s.ActiveSlots) / float64(s.Capacity)
	}
	fmt.Fprintln(w, styleTitle.Render("pool"))
	keyValue(w, "slots", fmt.Sprintf("%d/%d live (%.1f%%)", s.ActiveSlots, s.Capacity, util*100))
	keyValue(w, "buildings", fmt.Sprintf("%d", s.TotalBuildings))
	orphans := fmt.Sprintf("%d", s.OrphanedSlots)
	if s.OrphanedSlots > 0 {
		orphans = styleWarning.Render(orphans + " awaiting compaction")
	}
	keyValue(w, "orphaned", orphans)
	keyValue(w, "layers", fmt.Sprintf("%d (%.1f MiB instance buffers)", s.Layers, float64(s.GPUBytes)/(1024*1024)))
	keyValue(w, "compactions", fmt.Sprintf("%d (%d relocated, %d reclaimed)",
		s.CompactionEvents, s.SlotsRelocated, s.SlotsReclaimed))
	if s.CapacityOverflows > 0 {
		keyValue(w, "overflows", styleError.Render(fmt.Sprintf("%d buildings only partially placed", s.CapacityOverflows)))
	}
}

func keyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, "  "+keyStyle.Render(key)+" "+value)
}
