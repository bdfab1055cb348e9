package ui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	tea "github.com/charmbracelet/bubbletea"
)

// HistoryFetcher loads an account's recent signatures, newest first.
type HistoryFetcher func(ctx context.Context) ([]chain.SignatureInfo, error)

// historyModel is the bubbletea model for the interactive signature table.
type historyModel struct {
	ctx     context.Context
	title   string
	cluster *chain.Cluster
	fetch   HistoryFetcher
	sigs    []chain.SignatureInfo
	cursor  int
	loading bool
	err     string
	flash   string // brief feedback shown in the hint bar

	open func(string) error
	copy func(string) error
}

type historyLoadedMsg []chain.SignatureInfo
type historyErrorMsg string

func newHistoryModel(ctx context.Context, title string, cluster *chain.Cluster, fetch HistoryFetcher) historyModel {
	return historyModel{
		ctx:     ctx,
		title:   title,
		cluster: cluster,
		fetch:   fetch,
		loading: true,
		open:    openBrowser,
		copy:    copyToClipboard,
	}
}

func (m historyModel) Init() tea.Cmd { return m.load() }

func (m historyModel) load() tea.Cmd {
	return func() tea.Msg {
		sigs, err := m.fetch(m.ctx)
		if err != nil {
			return historyErrorMsg(err.Error())
		}
		return historyLoadedMsg(sigs)
	}
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.err = ""
		m.sigs = msg
		if m.cursor >= len(m.sigs) {
			m.cursor = max(len(m.sigs)-1, 0)
		}

	case historyErrorMsg:
		m.loading = false
		m.err = string(msg)

	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.sigs)-1 {
				m.cursor++
			}

		case "r":
			if !m.loading {
				m.loading = true
				return m, m.load()
			}

		case "o":
			if sig, ok := m.selected(); ok {
				if err := m.open(m.cluster.ExplorerTx(sig)); err != nil {
					m.flash = "Open failed: " + err.Error()
				} else {
					m.flash = "Opening in browser…"
				}
			}

		case "c", "y":
			if sig, ok := m.selected(); ok {
				if err := m.copy(sig); err != nil {
					m.flash = "Copy failed: " + err.Error()
				} else {
					m.flash = "Copied: " + sig[:10] + "…"
				}
			}
		}
	}
	return m, nil
}

func (m historyModel) selected() (string, bool) {
	if m.cursor >= len(m.sigs) {
		return "", false
	}
	return m.sigs[m.cursor].Signature.String(), true
}

func (m historyModel) View() string {
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title))
	sb.WriteString("\n\n")

	switch {
	case m.err != "":
		sb.WriteString(Err(m.err) + "\n")
	case m.loading && len(m.sigs) == 0:
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
	case len(m.sigs) == 0:
		sb.WriteString(StyleMeta.Render("No transactions found for this account.") + "\n")
	}

	if len(m.sigs) > 0 {
		t := SignatureTable(m.sigs)
		t.SelIdx = m.cursor
		sb.WriteString(t.Render())
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(historyControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

// SignatureTable lays out signatures the same way for the interactive
// view and for --plain output.
func SignatureTable(sigs []chain.SignatureInfo) *Table {
	t := NewTable([]Column{
		{Title: "Signature", Width: 24},
		{Title: "Slot", Width: 12},
		{Title: "Time", Width: 19},
		{Title: "Status", Width: 11},
	})
	for _, s := range sigs {
		when := "—"
		if !s.BlockTime.IsZero() {
			when = s.BlockTime.Local().Format("2006-01-02 15:04:05")
		}
		status := s.Status
		if s.Failed {
			status = StyleError.Render("failed")
		}
		t.AddRow(Row{
			TruncateAddr(s.Signature.String()),
			strconv.FormatUint(s.Slot, 10),
			when,
			status,
		})
	}
	return t
}

func historyControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ]"))
	sb.WriteString(StyleMeta.Render(" navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ o ]"))
	sb.WriteString(StyleMeta.Render(" open in explorer"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" copy signature"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ r ]"))
	sb.WriteString(StyleMeta.Render(" refresh"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}

// RunHistory starts the interactive signature list and blocks until the
// user quits. Uses the alt screen so the terminal is restored on exit.
func RunHistory(ctx context.Context, account string, cluster *chain.Cluster, fetch HistoryFetcher) error {
	title := fmt.Sprintf("📜 Recent transactions · %s · %s", TruncateAddr(account), cluster.Network)
	m := newHistoryModel(ctx, title, cluster, fetch)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(os.Stdin),
		tea.WithOutput(os.Stdout),
		tea.WithAltScreen())
	_, err := p.Run()
	return err
}
