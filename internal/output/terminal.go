package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/model"
)

// Printer renders debate events and catalogue listings for a terminal.
// Colours are dropped automatically when w is not a TTY.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	stage   lipgloss.Style
	muted   lipgloss.Style
	failure lipgloss.Style
	sides   map[debate.Side]lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		stage:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		sides: map[debate.Side]lipgloss.Style{
			debate.SidePro:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#98C379")),
			debate.SideCon:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#E06C75")),
			debate.SideJudge: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#C678DD")),
		},
	}
}

func (p *Printer) Header(topic string, rounds int) {
	rule := strings.Repeat("=", 20)
	fmt.Fprintf(p.w, "\n%s\n", p.title.Render(rule+" Debate begins "+rule))
	fmt.Fprintf(p.w, "%s %s\n", p.muted.Render("Topic:"), topic)
	fmt.Fprintf(p.w, "%s %d\n\n", p.muted.Render("Rebuttal rounds:"), rounds)
}

// Event prints one stream event. Message events carry their stage label.
func (p *Printer) Event(ev debate.Event) {
	switch ev.Type {
	case debate.EventMessage:
		fmt.Fprintln(p.w, p.stage.Render("["+StageLabel(ev)+"]"))
		fmt.Fprintln(p.w, p.sideStyle(ev.Side).Render("["+ev.Role+"]"))
		fmt.Fprintf(p.w, "%s\n\n", ev.Content)
	case debate.EventError:
		fmt.Fprintf(p.w, "%s %s\n\n", p.failure.Render("Debate failed:"), ev.Detail)
	case debate.EventEnd:
		rule := strings.Repeat("=", 20)
		fmt.Fprintf(p.w, "%s\n\n", p.title.Render(rule+" Debate over "+rule))
	}
}

func (p *Printer) Models(profiles []model.ModelProfileMeta) {
	group := ""
	for _, m := range profiles {
		if m.Group != group {
			group = m.Group
			fmt.Fprintln(p.w, p.title.Render(group))
		}
		fmt.Fprintf(p.w, "  %-24s %s %s\n", m.ID, m.Label, p.muted.Render("("+m.Model+")"))
	}
}

func (p *Printer) Personas(presets []model.PersonaPresetMeta) {
	for _, preset := range presets {
		fmt.Fprintf(p.w, "%s %s\n", p.title.Render(fmt.Sprintf("%-16s", preset.ID)), preset.Label)
		if preset.Description != "" {
			fmt.Fprintf(p.w, "  %s\n", p.muted.Render(preset.Description))
		}
	}
}

func (p *Printer) sideStyle(side debate.Side) lipgloss.Style {
	if s, ok := p.sides[side]; ok {
		return s
	}
	return p.sides[debate.SideJudge]
}

// StageLabel names the stage of a message event, e.g. "Con rebuttal, round 2".
func StageLabel(ev debate.Event) string {
	phase, ok := debate.ParsePhase(ev.Phase)
	if !ok {
		return ev.Role
	}
	if phase.Rebuttal() && ev.Round > 0 {
		return fmt.Sprintf("%s, round %d", phase.Label(), ev.Round)
	}
	return phase.Label()
}
