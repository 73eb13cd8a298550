package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/copydash/client/internal/ingest"
	"github.com/copydash/client/internal/store"
)

// ChangeBuffer is the size of the snapshot-change subscription channel.
const ChangeBuffer = 256

// App is the terminal dashboard. It subscribes to store change
// notifications and re-projects the affected panel; user actions are
// forwarded to the poll scheduler, never applied locally.
type App struct {
	app    *tview.Application
	layout *tview.Flex

	status    *StatusView
	whales    *WhalesView
	positions *PositionsView
	history   *HistoryView
	markets   *MarketsView
	activity  *ActivityView
	balance   *BalanceView
	keybar    *tview.TextView

	store  *store.Store
	poller *ingest.Poller

	changes     chan store.Domain
	refreshRate time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the dashboard application.
func NewApp(st *store.Store, poller *ingest.Poller, category string, refreshRate time.Duration) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:         tview.NewApplication(),
		status:      NewStatusView(),
		whales:      NewWhalesView(),
		positions:   NewPositionsView(),
		history:     NewHistoryView(),
		markets:     NewMarketsView(category),
		activity:    NewActivityView(),
		balance:     NewBalanceView(),
		store:       st,
		poller:      poller,
		changes:     make(chan store.Domain, ChangeBuffer),
		refreshRate: refreshRate,
		ctx:         ctx,
		cancel:      cancel,
	}

	st.Subscribe(a.changes)

	a.setupLayout()
	a.setupKeyboard()

	return a
}

// setupLayout builds the panel grid.
func (a *App) setupLayout() {
	a.keybar = tview.NewTextView().SetDynamicColors(true)
	fmt.Fprint(a.keybar, " [yellow]r[-] refresh  [yellow]w[-] reload whales  [yellow]s[-] simulate  [yellow]x[-] reset  [yellow]tab[-] category  [yellow]q[-] quit")

	topRow := tview.NewFlex().
		AddItem(a.status.Widget(), 0, 1, false).
		AddItem(a.balance.Widget(), 0, 1, false).
		AddItem(a.activity.Widget(), 0, 1, false)

	middleRow := tview.NewFlex().
		AddItem(a.whales.Widget(), 0, 1, false).
		AddItem(a.markets.Widget(), 0, 1, false)

	bottomRow := tview.NewFlex().
		AddItem(a.positions.Widget(), 0, 1, false).
		AddItem(a.history.Widget(), 0, 1, false)

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 2, false).
		AddItem(middleRow, 0, 3, false).
		AddItem(bottomRow, 0, 2, false).
		AddItem(a.keybar, 1, 0, false)

	a.app.SetRoot(a.layout, true)
}

// setupKeyboard configures the dashboard actions.
func (a *App) setupKeyboard() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyTab:
			a.cycleCategory()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				a.Stop()
				return nil
			case 'r', 'R':
				a.poller.KickManual(
					store.DomainStatus,
					store.DomainRanking,
					store.DomainPositions,
					store.DomainMarkets,
					store.DomainBalance,
				)
				return nil
			case 'w', 'W':
				go a.poller.Do(a.ctx, ingest.ActionRefreshWhales)
				return nil
			case 's', 'S':
				go a.poller.Do(a.ctx, ingest.ActionSimulate)
				return nil
			case 'x', 'X':
				go a.poller.Do(a.ctx, ingest.ActionReset)
				return nil
			}
		}
		return event
	})
}

// cycleCategory advances the market category filter.
func (a *App) cycleCategory() {
	markets, ok := a.store.Markets()
	if !ok {
		return
	}

	cats := Categories(markets)
	current := a.poller.Category()
	next := cats[0]
	for i, cat := range cats {
		if cat == current {
			next = cats[(i+1)%len(cats)]
			break
		}
	}

	a.markets.SetCategory(next)
	a.poller.SetCategory(next)
	a.markets.Update(a.store)
}

// Run starts the dashboard (blocking).
func (a *App) Run() error {
	go a.watchChanges()
	go a.refreshLoop()

	a.redrawAll()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the dashboard.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// watchChanges re-projects the panel affected by each store mutation.
func (a *App) watchChanges() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case d := <-a.changes:
			a.app.QueueUpdateDraw(func() {
				a.updateDomain(d)
			})
		}
	}
}

// refreshLoop periodically redraws time-relative widgets.
func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.status.Update(a.store)
				a.activity.Update(a.store)
			})
		}
	}
}

// updateDomain redraws the panels that project the given domain.
func (a *App) updateDomain(d store.Domain) {
	switch d {
	case store.DomainStatus, store.DomainConnection, store.DomainScan:
		a.status.Update(a.store)
	case store.DomainWhales:
		a.status.Update(a.store)
	case store.DomainRanking:
		a.whales.Update(a.store)
	case store.DomainPositions:
		a.positions.Update(a.store)
	case store.DomainHistory:
		a.history.Update(a.store)
	case store.DomainMarkets:
		a.markets.Update(a.store)
	case store.DomainBalance:
		a.balance.Update(a.store)
	case store.DomainActivity:
		a.activity.Update(a.store)
	}
}

// redrawAll repaints every panel, used once at startup so cached
// snapshots show before the first change notification.
func (a *App) redrawAll() {
	a.status.Update(a.store)
	a.whales.Update(a.store)
	a.positions.Update(a.store)
	a.history.Update(a.store)
	a.markets.Update(a.store)
	a.activity.Update(a.store)
	a.balance.Update(a.store)
}
