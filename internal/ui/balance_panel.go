package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/copydash/client/internal/store"
)

// sparkLevels are the glyphs of the balance sparkline, low to high.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkWidth is how many balance samples the sparkline shows.
const sparkWidth = 40

// BalanceView displays the balance series as a compact sparkline.
type BalanceView struct {
	textView *tview.TextView
}

// NewBalanceView creates a new balance history view.
func NewBalanceView() *BalanceView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Balance ").SetBorder(true)

	return &BalanceView{textView: textView}
}

// Widget returns the tview primitive.
func (v *BalanceView) Widget() tview.Primitive {
	return v.textView
}

// Update redraws the balance chart from the store.
func (v *BalanceView) Update(st *store.Store) {
	v.textView.Clear()

	balance, ok := st.BalanceHistory()
	if !ok || len(balance.Points) == 0 {
		fmt.Fprint(v.textView, "[gray]No balance history yet[-]")
		return
	}

	points := balance.Points
	if len(points) > sparkWidth {
		points = points[len(points)-sparkWidth:]
	}

	last := points[len(points)-1]
	pnlColor := "green"
	if last.PnL < 0 {
		pnlColor = "red"
	}

	fmt.Fprintf(v.textView, "Current: %s  PnL: [%s]%s[-]\n\n%s\nlow %s  high %s\n",
		FormatUSD(last.Balance),
		pnlColor, FormatSigned(last.PnL),
		sparkline(points),
		FormatUSD(minBalance(points)), FormatUSD(maxBalance(points)),
	)
}

// sparkline renders the points as one row of block glyphs.
func sparkline(points []store.BalancePoint) string {
	lo, hi := minBalance(points), maxBalance(points)
	span := hi - lo

	runes := make([]rune, len(points))
	for i, p := range points {
		level := 0
		if span > 0 {
			level = int((p.Balance - lo) / span * float64(len(sparkLevels)-1))
		}
		runes[i] = sparkLevels[level]
	}
	return string(runes)
}

func minBalance(points []store.BalancePoint) float64 {
	m := points[0].Balance
	for _, p := range points[1:] {
		if p.Balance < m {
			m = p.Balance
		}
	}
	return m
}

func maxBalance(points []store.BalancePoint) float64 {
	m := points[0].Balance
	for _, p := range points[1:] {
		if p.Balance > m {
			m = p.Balance
		}
	}
	return m
}
