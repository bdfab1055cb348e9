package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	tea "github.com/charmbracelet/bubbletea"
)

// BalanceEntry is one account's balance on the dashboard.
type BalanceEntry struct {
	Network  string
	Address  string
	Lamports uint64
}

// BalanceFetcher loads the current balances. It is called once per tick.
type BalanceFetcher func(ctx context.Context) ([]BalanceEntry, error)

// dashboardModel is the Bubble Tea model for the live balance dashboard.
type dashboardModel struct {
	ctx        context.Context
	entries    []BalanceEntry
	baseline   map[string]uint64 // first balance seen per address
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    BalanceFetcher
	err        string
}

type tickMsg time.Time
type balanceFetchedMsg []BalanceEntry
type balanceErrorMsg string

func newDashboardModel(ctx context.Context, interval time.Duration, fetcher BalanceFetcher) dashboardModel {
	return dashboardModel{
		ctx:      ctx,
		interval: interval,
		fetcher:  fetcher,
		baseline: make(map[string]uint64),
	}
}

// NewDashboard creates a Bubble Tea program that polls fetcher every
// interval until the user quits or ctx is cancelled.
func NewDashboard(ctx context.Context, interval time.Duration, fetcher BalanceFetcher) *tea.Program {
	return tea.NewProgram(newDashboardModel(ctx, interval, fetcher), tea.WithContext(ctx))
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case balanceFetchedMsg:
		m.entries = []BalanceEntry(msg)
		for _, e := range m.entries {
			if _, ok := m.baseline[e.Address]; !ok {
				m.baseline[e.Address] = e.Lamports
			}
		}
		m.lastUpdate = time.Now()
		m.err = ""

	case balanceErrorMsg:
		m.err = string(msg)
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ Live Balance") + "\n")
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated: %s · every %s · q to quit\n\n",
		m.lastUpdate.Format("15:04:05"), m.interval)))

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}

	if len(m.entries) == 0 {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
		return sb.String()
	}

	t := NewTable([]Column{
		{Title: "Network", Width: 14},
		{Title: "Address", Width: 14},
		{Title: "Balance (SOL)", Width: 18},
		{Title: "Change", Width: 16},
	})
	for _, e := range m.entries {
		t.AddRow(Row{
			ChainName(e.Network),
			TruncateAddr(e.Address),
			Val(chain.LamportsToSOL(e.Lamports)),
			delta(m.baseline[e.Address], e.Lamports),
		})
	}
	sb.WriteString(t.Render())
	return sb.String()
}

// delta renders the change since the first reading.
func delta(from, to uint64) string {
	switch {
	case to > from:
		return StyleSuccess.Render("+" + chain.LamportsToSOL(to-from))
	case to < from:
		return StyleError.Render("-" + chain.LamportsToSOL(from-to))
	}
	return StyleMeta.Render("·")
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.fetcher(m.ctx)
		if err != nil {
			return balanceErrorMsg(err.Error())
		}
		return balanceFetchedMsg(entries)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
