/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/quiz"
	"github.com/Seednode/ulvareth/roster"
)

var (
	summaryStyle = lipgloss.NewStyle().
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	groupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	archetypeColors = [...]lipgloss.Color{
		party.Swords:   lipgloss.Color("#C0392B"),
		party.Seekers:  lipgloss.Color("#2E86C1"),
		party.Schemers: lipgloss.Color("#8E44AD"),
	}
)

func archetypeStyle(a party.Archetype) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(archetypeColors[a])
}

func renderTally(t party.Tally) string {
	parts := make([]string, 0, len(party.Archetypes))
	for _, a := range party.Archetypes {
		parts = append(parts, archetypeStyle(a).Render(fmt.Sprintf("%s %d", a.Label(), t[a])))
	}

	return strings.Join(parts, dimStyle.Render(" · "))
}

// renderGroups draws the non-empty groups as bordered boxes.
func renderGroups(groups []party.Group, summary party.Tally) string {
	var sb strings.Builder

	sb.WriteString(summaryStyle.Render(fmt.Sprintf("%d players", summary.Total())))
	sb.WriteString("  ")
	sb.WriteString(renderTally(summary))
	sb.WriteString("\n")

	for _, g := range party.NonEmpty(groups) {
		title := titleStyle.Render(g.Title())
		if g.Categorized {
			title = titleStyle.Foreground(archetypeColors[g.Category]).Render(g.Title())
		}

		lines := []string{
			title + "  " + dimStyle.Render(fmt.Sprintf("(%d)", len(g.Members))),
		}
		for _, m := range g.Members {
			lines = append(lines, fmt.Sprintf("%s  %s %s",
				m.Name,
				archetypeStyle(m.Primary).Render(m.PrimaryLabel),
				dimStyle.Render("/ "+m.SecondaryLabel),
			))
		}
		lines = append(lines, dimStyle.Render("secondary: ")+renderTally(g.SecCoverage))

		sb.WriteString(groupStyle.Render(strings.Join(lines, "\n")))
		sb.WriteString("\n")
	}

	return sb.String()
}

// readRoster reads one roster source; "-" is stdin.
func readRoster(name string, stdin io.Reader) ([]roster.Row, error) {
	if name == "-" {
		return roster.ParseReader(stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return roster.ParseReader(f)
}

func writeAssignments(cfg *Config, rows []roster.Row) error {
	f, err := os.Create(cfg.output)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(f, roster.BOM); err != nil {
		f.Close()

		return err
	}

	if err := roster.Write(f, rows); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

func runGroup(cfg *Config, stdin io.Reader, stdout io.Writer, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}

	var all []roster.Row

	for _, name := range args {
		label := name
		if name == "-" {
			label = "stdin"
		}

		rows, err := readRoster(name, stdin)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}

		if err := roster.Validate(rows); err != nil {
			rostersRejected.WithLabelValues("cli").Inc()

			return fmt.Errorf("%s: %w", label, err)
		}
		rostersParsed.WithLabelValues("cli").Inc()

		logf(cfg, "GROUP: Read %d players from %s", len(rows), label)

		all = append(all, rows...)
	}

	mode := cfg.groupMode()
	size := party.ClampSize(cfg.partySize)

	groups := party.Suggest(mode, all, size)
	groupingsTotal.WithLabelValues(string(mode)).Inc()

	if cfg.pretty {
		_, err := io.WriteString(stdout, renderGroups(groups, party.Summarize(all)))

		return err
	}

	rows := party.Export(groups)

	if cfg.output != "" {
		if err := writeAssignments(cfg, rows); err != nil {
			return fmt.Errorf("%s: %w", cfg.output, err)
		}

		logf(cfg, "GROUP: Wrote %d assignments to %s", len(rows), cfg.output)

		return nil
	}

	return roster.Write(stdout, rows)
}

func runSample(cfg *Config, w io.Writer, args []string) error {
	if len(args) == 0 {
		_, err := io.WriteString(w, strings.Join(roster.SampleNames(), "\n")+"\n")

		return err
	}

	var src *rand.Rand
	if cfg.seed != 0 {
		src = rand.New(rand.NewPCG(cfg.seed, cfg.seed))
	}

	text, err := roster.Sample(args[0], src)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, text)

	return err
}

func runInbox(cfg *Config, w io.Writer, arg string) error {
	p, err := quiz.Decode(arg)
	if err != nil {
		return err
	}

	logf(cfg, "INBOX: Decoded result for %q", p.Player)

	return roster.Write(w, []roster.Row{p.Row()})
}
