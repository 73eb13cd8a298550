package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/copydash/client/internal/store"
)

// PositionsView displays the currently open copy-trade positions.
type PositionsView struct {
	table *tview.Table
}

var positionHeaders = []string{"Market", "Side", "Amount", "Entry", "Whale"}

// NewPositionsView creates a new open positions view.
func NewPositionsView() *PositionsView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Open Positions ").SetBorder(true)
	setHeader(table, positionHeaders)

	return &PositionsView{table: table}
}

// Widget returns the tview primitive.
func (v *PositionsView) Widget() tview.Primitive {
	return v.table
}

// Update redraws the open positions from the store.
func (v *PositionsView) Update(st *store.Store) {
	v.table.Clear()
	setHeader(v.table, positionHeaders)

	positions, ok := st.Positions()
	if !ok || len(positions.Positions) == 0 {
		setPlaceholder(v.table, "No open positions")
		v.table.SetTitle(" Open Positions ")
		return
	}

	for i, p := range positions.Positions {
		row := i + 1
		v.table.SetCell(row, 0, tview.NewTableCell(truncateText(p.Market, 30)).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 1, tview.NewTableCell(p.Side).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 2, tview.NewTableCell(FormatUSD(p.Amount)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%.2f", p.EntryPrice)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 4, tview.NewTableCell(truncateText(p.Whale, 12)).SetAlign(tview.AlignLeft))
	}

	v.table.SetTitle(fmt.Sprintf(" Open Positions (%d) ", len(positions.Positions)))
}

// HistoryView displays settled trades, newest first.
type HistoryView struct {
	table *tview.Table
}

var historyHeaders = []string{"Market", "Side", "Amount", "Profit", "Whale", "Opened"}

// NewHistoryView creates a new trade history view.
func NewHistoryView() *HistoryView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Trade History ").SetBorder(true)
	setHeader(table, historyHeaders)

	return &HistoryView{table: table}
}

// Widget returns the tview primitive.
func (v *HistoryView) Widget() tview.Primitive {
	return v.table
}

// Update redraws the history from the store.
func (v *HistoryView) Update(st *store.Store) {
	v.table.Clear()
	setHeader(v.table, historyHeaders)

	history, ok := st.History()
	if !ok || len(history.Trades) == 0 {
		setPlaceholder(v.table, "No trades yet")
		v.table.SetTitle(" Trade History ")
		return
	}

	for i, t := range history.Trades {
		row := i + 1

		profitColor := tcell.ColorGreen
		if !t.IsWinner {
			profitColor = tcell.ColorRed
		}

		v.table.SetCell(row, 0, tview.NewTableCell(truncateText(t.Market, 30)).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 1, tview.NewTableCell(t.Side).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 2, tview.NewTableCell(t.Amount).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 3, tview.NewTableCell(t.Profit).SetAlign(tview.AlignRight).SetTextColor(profitColor))
		v.table.SetCell(row, 4, tview.NewTableCell(truncateText(t.Whale, 12)).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 5, tview.NewTableCell(t.OpenedAt).SetAlign(tview.AlignLeft))
	}

	v.table.SetTitle(fmt.Sprintf(" Trade History (%d) ", len(history.Trades)))
}
