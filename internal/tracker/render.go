package tracker

import (
	"io"

	"bingers/internal/store"
	"bingers/internal/tvmaze"
	"bingers/internal/util"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// tableRenderer styles tables for one output; colors are dropped when the
// output is not a terminal.
type tableRenderer struct {
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func newTableRenderer(w io.Writer) tableRenderer {
	r := lipgloss.NewRenderer(w)
	return tableRenderer{
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		border: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (tr tableRenderer) render(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tr.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tr.header
			}
			return tr.cell
		}).
		String()
}

func (tr tableRenderer) episodes(episodes []tvmaze.Episode) string {
	rows := make([][]string, 0, len(episodes))
	for _, ep := range episodes {
		rows = append(rows, []string{refOf(ep).String(), util.Truncate(ep.Name, 48), ep.Airdate})
	}
	return tr.render([]string{"Episode", "Name", "Aired"}, rows)
}

func (tr tableRenderer) subscriptions(subs []store.Subscription) string {
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{sub.Title, sub.Network, sub.Status, util.Runtime(sub.Runtime), progress(sub)})
	}
	return tr.render([]string{"Show", "Network", "Status", "Runtime", "Last watched"}, rows)
}
