package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/copydash/client/internal/store"
)

// StatusView displays the trading summary, whale tier counts and the
// push-channel state.
type StatusView struct {
	textView *tview.TextView
}

// NewStatusView creates a new status view.
func NewStatusView() *StatusView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	textView.SetTitle(" Status ").SetBorder(true)

	return &StatusView{textView: textView}
}

// Widget returns the tview primitive.
func (v *StatusView) Widget() tview.Primitive {
	return v.textView
}

// Update redraws the panel from the store.
func (v *StatusView) Update(st *store.Store) {
	v.textView.Clear()

	connColor := "red"
	conn := st.ConnState()
	if conn == store.StateConnected {
		connColor = "green"
	} else if conn == store.StateConnecting {
		connColor = "yellow"
	}

	scan := ""
	if pulse := st.ScanPulse(); pulse.Active {
		scan = fmt.Sprintf("  [yellow]scanning %d whales...[-]", pulse.Count)
	}

	fmt.Fprintf(v.textView, "Connection: [%s]%s[-]%s\n\n", connColor, conn, scan)

	status, ok := st.Status()
	if !ok {
		fmt.Fprint(v.textView, "[gray]Waiting for trading status...[-]\n\n")
	} else {
		pnlColor := "green"
		if status.PnL < 0 {
			pnlColor = "red"
		}

		fmt.Fprintf(v.textView, `[yellow]Trading (%s)[-]
Balance: %s
Total Value: %s
PnL: [%s]%s (%s)[-]
Trades: %d total, %d open
Record: %dW / %dL (%s)
Best: %s  Worst: %s

`,
			status.Mode,
			FormatUSD(status.CurrentBalance),
			FormatUSD(status.TotalValue),
			pnlColor, FormatSigned(status.PnL), FormatPercent(status.PnLPercent),
			status.TotalTrades, status.OpenTrades,
			status.Wins, status.Losses, FormatPercent(status.WinRate),
			FormatSigned(status.BestTrade), FormatSigned(status.WorstTrade),
		)
	}

	whales, ok := st.WhaleSummary()
	if !ok {
		fmt.Fprint(v.textView, "[gray]Waiting for whale summary...[-]\n")
		return
	}

	fmt.Fprintf(v.textView, `[yellow]Whales[-]
Tracked: %d
[red]Hot: %d[-]  [orange]Warm: %d[-]  [blue]Cold: %d[-]
Top Score: %.1f  Avg: %.1f
`,
		whales.TotalTracked,
		whales.HotCount, whales.WarmCount, whales.ColdCount,
		whales.TopScore, whales.AvgScore,
	)
}
