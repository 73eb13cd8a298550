package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/copydash/client/internal/store"
)

// ActivityView displays the activity feed, newest first.
type ActivityView struct {
	textView *tview.TextView
}

// NewActivityView creates a new activity feed view.
func NewActivityView() *ActivityView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)

	textView.SetTitle(" Activity ").SetBorder(true)

	return &ActivityView{textView: textView}
}

// Widget returns the tview primitive.
func (v *ActivityView) Widget() tview.Primitive {
	return v.textView
}

// Update redraws the feed from the store.
func (v *ActivityView) Update(st *store.Store) {
	v.textView.Clear()

	activity := st.Activity()
	if len(activity.Entries) == 0 {
		fmt.Fprint(v.textView, "[gray]No activity yet[-]")
		return
	}

	for _, e := range activity.Entries {
		color := "white"
		switch e.Kind {
		case "win":
			color = "green"
		case "loss", "error":
			color = "red"
		case "trade":
			color = "aqua"
		case "action":
			color = "yellow"
		}
		fmt.Fprintf(v.textView, "[gray]%-8s[-] [%s]%s[-]\n",
			formatTimeAgo(e.At), color, tview.Escape(e.Message))
	}
}
