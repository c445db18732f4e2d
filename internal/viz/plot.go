// Package viz renders solved jobs to the terminal.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/cstarkjp/GME/internal/composite"
	"github.com/cstarkjp/GME/internal/trace"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Isochrones renders a stack of isochrone profiles as one terminal graph.
// Each curve is resampled to a common width so the x-axis reads as
// normalized horizontal position.
func Isochrones(isochrones []trace.Isochrone, width, height, maxCurves int) string {
	if maxCurves < 1 {
		maxCurves = 8
	}
	series := make([][]float64, 0, maxCurves)
	stride := 1
	nonEmpty := 0
	for _, iso := range isochrones {
		if !iso.Empty() {
			nonEmpty++
		}
	}
	if nonEmpty > maxCurves {
		stride = (nonEmpty + maxCurves - 1) / maxCurves
	}

	k := 0
	for _, iso := range isochrones {
		if iso.Empty() {
			continue
		}
		if k%stride == 0 {
			series = append(series, resample(iso, width))
		}
		k++
	}
	if len(series) == 0 {
		return faintStyle.Render("(no isochrone data)")
	}

	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3))
	return graphStyle.Render(graph)
}

// resample linearly interpolates an isochrone's surface onto n evenly
// spaced positions across its own span. The fitted dense curve is used
// when present; otherwise the raw points.
func resample(iso trace.Isochrone, n int) []float64 {
	xs, zs := iso.CurveX, iso.CurveZ
	if len(xs) < 2 {
		xs, zs = iso.X, iso.Z
	}
	out := make([]float64, n)
	if len(xs) == 0 {
		return out
	}
	if len(xs) == 1 {
		for i := range out {
			out[i] = zs[0]
		}
		return out
	}

	span := xs[len(xs)-1] - xs[0]
	j := 0
	for i := 0; i < n; i++ {
		xq := xs[0] + span*float64(i)/float64(n-1)
		for j < len(xs)-2 && xs[j+1] < xq {
			j++
		}
		w := 0.0
		if xs[j+1] != xs[j] {
			w = (xq - xs[j]) / (xs[j+1] - xs[j])
		}
		out[i] = zs[j] + w*(zs[j+1]-zs[j])
	}
	return out
}

// Summary renders a short, styled description of a solved job.
func Summary(sol *composite.Solution) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("solution"))
	sb.WriteString("\n")

	row := func(label string, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(valueStyle.Render(value))
		sb.WriteString("\n")
	}

	row("model", sol.Fingerprint)
	row("end time", fmt.Sprintf("%g", sol.TEnd))
	for _, fam := range sol.Families {
		row("family "+fam.Name, fmt.Sprintf("%d rays, %d failed, t_max %.4g",
			len(fam.Trajectories), len(fam.Failures), fam.TMax()))
	}
	row("isochrones", fmt.Sprintf("%d", len(sol.Isochrones)))
	row("knickpoints", fmt.Sprintf("%d", len(sol.Knickpoints)))
	for i, kp := range sol.Knickpoints {
		row(fmt.Sprintf("  knick %d", i), fmt.Sprintf("seed t=%.4g, %s", kp.SeedTime, kp.Phase))
	}
	return sb.String()
}
