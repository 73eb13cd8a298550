package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/copydash/client/internal/store"
)

// MarketsView displays active markets for the selected category. The
// "all" category shows a combined slice of every category.
type MarketsView struct {
	table    *tview.Table
	category string
}

var marketHeaders = []string{"Market", "Cat", "Yes", "No", "Vol 24h", "Liq"}

// NewMarketsView creates a new markets view.
func NewMarketsView(category string) *MarketsView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(fmt.Sprintf(" Markets: %s ", category)).SetBorder(true)
	setHeader(table, marketHeaders)

	return &MarketsView{table: table, category: category}
}

// Widget returns the tview primitive.
func (v *MarketsView) Widget() tview.Primitive {
	return v.table
}

// SetCategory switches the displayed category filter.
func (v *MarketsView) SetCategory(category string) {
	v.category = category
}

// Update redraws the market list from the store.
func (v *MarketsView) Update(st *store.Store) {
	v.table.Clear()
	setHeader(v.table, marketHeaders)
	v.table.SetTitle(fmt.Sprintf(" Markets: %s ", v.category))

	markets, ok := st.Markets()
	if !ok {
		setPlaceholder(v.table, "No market data yet...")
		return
	}

	list := FlattenMarkets(markets, v.category)
	if len(list) == 0 {
		setPlaceholder(v.table, "No markets in this category")
		return
	}

	for i, m := range list {
		row := i + 1
		v.table.SetCell(row, 0, tview.NewTableCell(truncateText(m.Question, 40)).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 1, tview.NewTableCell(m.Category).SetAlign(tview.AlignLeft))
		v.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%.2f", m.YesPrice)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%.2f", m.NoPrice)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 4, tview.NewTableCell("$"+Abbreviate(m.Volume24h)).SetAlign(tview.AlignRight))
		v.table.SetCell(row, 5, tview.NewTableCell("$"+Abbreviate(m.Liquidity)).SetAlign(tview.AlignRight))
	}

	v.table.SetTitle(fmt.Sprintf(" Markets: %s (%d) ", v.category, len(list)))
}
