package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	Network       string
	Connector     string
	RPCAlgorithm  string
	WalletAddress string // optional watch-only wallet
	WalletName    string
	Cancelled     bool
}

// WizardChoices are the options offered at each step.
type WizardChoices struct {
	Networks   []string
	Connectors []string
	Algorithms []string
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepConnector
	stepAlgorithm
	stepWallet
	stepDone
)

type wizardModel struct {
	step    wizardStep
	opts    WizardChoices
	result  WizardResult
	cursor  int
	choices []string
	input   string
}

func initialWizard(opts WizardChoices) wizardModel {
	return wizardModel{step: stepNetwork, opts: opts, choices: opts.Networks}
}

func (m wizardModel) inputMode() bool { return m.step == stepWallet }

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.result.Cancelled = true
		return m, tea.Quit
	case tea.KeyUp:
		if !m.inputMode() && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if !m.inputMode() && m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		if m.inputMode() {
			m.applyInput()
		} else {
			m.applyChoice()
		}
		m.advance()
	case tea.KeyBackspace:
		if m.inputMode() && len(m.input) > 0 {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		if m.inputMode() {
			m.input += string(key.Runes)
		} else if s := string(key.Runes); s == "k" && m.cursor > 0 {
			m.cursor--
		} else if s == "j" && m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	m.cursor = 0
	switch m.step {
	case stepConnector:
		m.choices = m.opts.Connectors
	case stepAlgorithm:
		m.choices = m.opts.Algorithms
	case stepWallet:
		m.choices = nil
		m.input = ""
	}
}

func (m *wizardModel) applyChoice() {
	if m.cursor >= len(m.choices) {
		return
	}
	choice := m.choices[m.cursor]
	switch m.step {
	case stepNetwork:
		m.result.Network = choice
	case stepConnector:
		m.result.Connector = choice
	case stepAlgorithm:
		m.result.RPCAlgorithm = choice
	}
}

func (m *wizardModel) applyInput() {
	// Strip whitespace and accidental brackets or quotes from paste.
	addr := strings.Trim(strings.TrimSpace(m.input), `[]"'`)
	if addr != "" {
		m.result.WalletAddress = addr
		m.result.WalletName = "default"
	}
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepNetwork:
		s = renderMenu("Select default network:", m.choices, m.cursor)
	case stepConnector:
		s = renderMenu("Select default wallet connector:", m.choices, m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices, m.cursor)
	case stepWallet:
		s = StyleTitle.Render("Add a watch-only wallet (optional)") + "\n\n"
		s += StyleMeta.Render("Enter a base58 address (or press Enter to skip):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · esc quit")
	return s
}

// RunWizard launches the interactive setup wizard and returns the result.
func RunWizard(opts WizardChoices) (*WizardResult, error) {
	p := tea.NewProgram(initialWizard(opts))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
