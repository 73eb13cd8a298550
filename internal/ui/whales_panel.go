package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/copydash/client/internal/store"
)

// WhalesView displays the whale leaderboard in server rank order.
type WhalesView struct {
	table *tview.Table
}

var whaleHeaders = []string{"#", "Whale", "Score", "Heat", "Win%", "Profit", "Trades"}

// NewWhalesView creates a new leaderboard view.
func NewWhalesView() *WhalesView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Whale Leaderboard ").SetBorder(true)
	setHeader(table, whaleHeaders)

	return &WhalesView{table: table}
}

// Widget returns the tview primitive.
func (v *WhalesView) Widget() tview.Primitive {
	return v.table
}

// Update redraws the leaderboard from the store.
func (v *WhalesView) Update(st *store.Store) {
	v.table.Clear()
	setHeader(v.table, whaleHeaders)

	ranking, ok := st.Ranking()
	if !ok || len(ranking.Whales) == 0 {
		setPlaceholder(v.table, "No whales loaded yet...")
		v.table.SetTitle(" Whale Leaderboard ")
		return
	}

	for i, w := range ranking.Whales {
		row := i + 1

		name := w.Name
		if name == "" {
			name = truncateText(w.Address, 12)
		}

		heatColor := tcell.ColorBlue
		switch w.HeatLevel {
		case "hot":
			heatColor = tcell.ColorRed
		case "warm":
			heatColor = tcell.ColorOrange
		}

		v.table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", w.Rank)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 1, tview.NewTableCell(truncateText(name, 18)).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%.1f", w.Score)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 3, tview.NewTableCell(w.HeatLevel).SetAlign(tview.AlignLeft).SetTextColor(heatColor))
		v.table.SetCell(row, 4, tview.NewTableCell(w.WinRate).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 5, tview.NewTableCell(w.Profit).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 6, tview.NewTableCell(fmt.Sprintf("%d", w.TradeCount)).SetAlign(tview.AlignRight))
	}

	v.table.SetTitle(fmt.Sprintf(" Whale Leaderboard (%d) ", len(ranking.Whales)))
}

// setHeader writes the fixed header row.
func setHeader(table *tview.Table, headers []string) {
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false)
		table.SetCell(0, col, cell)
	}
}

// setPlaceholder renders the defined empty state for a table panel.
func setPlaceholder(table *tview.Table, text string) {
	cell := tview.NewTableCell(text).
		SetAlign(tview.AlignCenter).
		SetExpansion(1)
	table.SetCell(1, 0, cell)
}
