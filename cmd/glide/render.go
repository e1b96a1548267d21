package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/glide/internal/experiment"
	"github.com/san-kum/glide/internal/metrics"
)

var (
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const maxChartPoints = 200

func renderSummary(res *experiment.Result, wall time.Duration) string {
	s := res.Summary
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		headerStyle.Render("SIMULATION COMPLETE: " + res.Name),
		row("steps", fmt.Sprintf("%d", res.Steps)),
		row("final time", fmt.Sprintf("%.2f s", res.Duration)),
		row("wall time", wall.Round(time.Millisecond).String()),
		"",
		row("battery SoC", fmt.Sprintf("%8.5f%%", s.SoC*100)),
		row("battery", fmt.Sprintf("%.0f / %.0f J", s.Battery, res.Capacity)),
		row("total energy", fmt.Sprintf("%.2f J", s.Total)),
		row("elastic", fmt.Sprintf("%.2f J", s.Elastic)),
		row("kinetic", fmt.Sprintf("%.2f J", s.Kinetic)),
		row("gravitational", fmt.Sprintf("%.2f J", s.Gravitational)),
		"",
		row("winch energy", fmt.Sprintf("%.2f J", res.Motor.EnergyUsed)),
		row("anchor travel", fmt.Sprintf("%.3f m", res.Motor.AnchorDisplacement)),
		row("EDT rated force", fmt.Sprintf("%.3e N", res.RatedForce)),
		row("energy drift", fmt.Sprintf("%.3e", res.Metrics["energy_drift"])),
	}
	if res.Recoveries > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("non-finite state reset %d times", res.Recoveries)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderLedgerChart(samples []metrics.Sample) string {
	if len(samples) == 0 {
		return "no samples"
	}

	series := []struct {
		caption string
		value   func(metrics.Sample) float64
	}{
		{"E_total (J)", func(s metrics.Sample) float64 { return s.Total }},
		{"E_kin + E_elastic (J)", func(s metrics.Sample) float64 { return s.Kinetic + s.Elastic }},
		{"SoC", func(s metrics.Sample) float64 { return s.SoC }},
	}

	stride := 1
	if len(samples) > maxChartPoints {
		stride = len(samples) / maxChartPoints
	}

	var b strings.Builder
	for _, ser := range series {
		data := make([]float64, 0, len(samples)/stride+1)
		for i := 0; i < len(samples); i += stride {
			data = append(data, ser.value(samples[i]))
		}
		b.WriteString(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(ser.caption),
		))
		b.WriteString("\n\n")
	}
	return b.String()
}
