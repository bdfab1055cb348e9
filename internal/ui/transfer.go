package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/transfer"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
)

// Session is the wallet side the transfer screen drives. *provider.Provider
// implements it.
type Session interface {
	Network() chain.Network
	Connectors() []wallet.Connector
	Connect(ctx context.Context, name string) (solana.PublicKey, error)
	Disconnect(ctx context.Context) error
	PublicKey() (solana.PublicKey, bool)
}

type formField int

const (
	fieldAmount formField = iota
	fieldRecipient
	fieldSend
	fieldCount
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusErr
)

type (
	connectResultMsg struct {
		name string
		pub  solana.PublicKey
		err  error
	}
	disconnectResultMsg struct{ err error }
	submitResultMsg     struct {
		res *transfer.Result
		err error
	}
	formTickMsg struct{}
)

// TransferModel is the interactive transfer screen: an amount field, a
// recipient field, a send button and a connect/disconnect control.
type TransferModel struct {
	ctx     context.Context
	session Session
	form    *transfer.Form
	cluster *chain.Cluster

	focus     formField
	amount    string
	recipient string

	picking bool
	picker  pickerModel

	connecting bool
	pending    int
	frame      int

	status     string
	statusKind statusKind
	lastSig    string
	quitting   bool
}

// NewTransferModel returns the screen for form. Field text starts from the
// form's current values.
func NewTransferModel(ctx context.Context, s Session, form *transfer.Form) TransferModel {
	cluster, _ := chain.NewRegistry().Get(s.Network())
	m := TransferModel{
		ctx:       ctx,
		session:   s,
		form:      form,
		cluster:   cluster,
		amount:    strconv.FormatFloat(form.Amount(), 'f', -1, 64),
		recipient: form.Recipient(),
	}
	if _, ok := s.PublicKey(); !ok {
		m.setStatus(statusInfo, "Not connected · ctrl+k to connect a wallet")
	}
	return m
}

// RunTransfer runs the transfer screen until the user quits.
func RunTransfer(ctx context.Context, s Session, form *transfer.Form) error {
	p := tea.NewProgram(NewTransferModel(ctx, s, form), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("transfer screen: %w", err)
	}
	return nil
}

func (m TransferModel) Init() tea.Cmd { return nil }

func (m TransferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateKey(msg)

	case connectResultMsg:
		m.connecting = false
		if msg.err != nil {
			m.setStatus(statusErr, trimErr(msg.err.Error()))
		} else {
			m.setStatus(statusOK, "Connected "+msg.name+" · "+msg.pub.String())
		}

	case disconnectResultMsg:
		if msg.err != nil {
			m.setStatus(statusErr, trimErr(msg.err.Error()))
		} else {
			m.setStatus(statusInfo, "Disconnected")
		}

	case submitResultMsg:
		m.pending--
		m.applySubmit(msg)

	case formTickMsg:
		m.frame = (m.frame + 1) % len(spinFrames)
		if m.busy() {
			return m, formTick()
		}
	}
	return m, nil
}

func (m TransferModel) updateKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + fieldCount - 1) % fieldCount

	case tea.KeyEnter:
		if m.focus == fieldSend {
			return m.submit()
		}
		m.focus++
	case tea.KeyCtrlS:
		return m.submit()

	case tea.KeyCtrlK:
		return m.openPicker()
	case tea.KeyCtrlD:
		return m.disconnect()

	case tea.KeyCtrlO:
		if m.lastSig != "" && m.cluster != nil {
			if err := openBrowser(m.cluster.ExplorerTx(m.lastSig)); err != nil {
				m.setStatus(statusErr, "Could not open browser")
			}
		}
	case tea.KeyCtrlY:
		if m.lastSig != "" {
			if err := copyToClipboard(m.lastSig); err != nil {
				m.setStatus(statusErr, "Copy failed")
			} else {
				m.setStatus(statusInfo, "Copied "+TruncateAddr(m.lastSig))
			}
		}

	case tea.KeyBackspace:
		m.edit(func(s string) string {
			if r := []rune(s); len(r) > 0 {
				return string(r[:len(r)-1])
			}
			return s
		})
	case tea.KeyRunes, tea.KeySpace:
		m.edit(func(s string) string { return s + string(key.Runes) })
	}
	return m, nil
}

// edit changes the focused field and hands the raw text to the form.
func (m *TransferModel) edit(fn func(string) string) {
	switch m.focus {
	case fieldAmount:
		m.amount = fn(m.amount)
		m.form.OnAmountChange(m.amount)
	case fieldRecipient:
		m.recipient = fn(m.recipient)
		m.form.OnRecipientChange(m.recipient)
	}
}

func (m TransferModel) submit() (tea.Model, tea.Cmd) {
	m.pending++
	m.setStatus(statusInfo, "Sending "+m.amountLabel()+" SOL…")
	form, ctx := m.form, m.ctx
	send := func() tea.Msg {
		res, err := form.Submit(ctx)
		return submitResultMsg{res: res, err: err}
	}
	return m, tea.Batch(send, m.startTick())
}

func (m *TransferModel) applySubmit(msg submitResultMsg) {
	if msg.res != nil {
		m.lastSig = msg.res.Signature.String()
	}
	switch {
	case msg.err == nil:
		m.setStatus(statusOK, fmt.Sprintf("Sent %s SOL to %s · %s",
			msg.res.Request.SOL(), TruncateAddr(msg.res.Request.Destination.String()), TruncateAddr(m.lastSig)))
	case errors.Is(msg.err, wallet.ErrNotConnected):
		m.setStatus(statusErr, "Wallet not connected · ctrl+k to connect")
	case errors.Is(msg.err, transfer.ErrInvalidRecipient):
		m.setStatus(statusErr, "Invalid recipient address")
	default:
		m.setStatus(statusErr, trimErr(msg.err.Error()))
	}
}

func (m TransferModel) openPicker() (tea.Model, tea.Cmd) {
	var items []PickerItem
	for _, c := range m.session.Connectors() {
		item := PickerItem{Label: c.Name(), Value: c.Name()}
		if !c.Available() {
			item.SubLabel = "unavailable"
			item.Disabled = true
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		m.setStatus(statusErr, "No wallet connectors")
		return m, nil
	}
	m.picking = true
	m.picker = newPicker("Connect a wallet", items, true)
	return m, nil
}

func (m TransferModel) updatePicker(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	next, _ := m.picker.Update(key)
	m.picker = next.(pickerModel)
	if !m.picker.done() {
		return m, nil
	}
	m.picking = false
	if m.picker.selected == nil {
		return m, nil
	}

	name := m.picker.selected.Value
	m.connecting = true
	m.setStatus(statusInfo, "Connecting "+name+"…")
	session, ctx := m.session, m.ctx
	connect := func() tea.Msg {
		pub, err := session.Connect(ctx, name)
		return connectResultMsg{name: name, pub: pub, err: err}
	}
	return m, tea.Batch(connect, m.startTick())
}

func (m TransferModel) disconnect() (tea.Model, tea.Cmd) {
	session, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		return disconnectResultMsg{err: session.Disconnect(ctx)}
	}
}

func (m TransferModel) busy() bool { return m.pending > 0 || m.connecting }

// startTick starts the spinner unless it is already running.
func (m TransferModel) startTick() tea.Cmd {
	if m.pending+btoi(m.connecting) > 1 {
		return nil
	}
	return formTick()
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return formTickMsg{} })
}

func (m *TransferModel) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m TransferModel) amountLabel() string {
	return chain.LamportsToSOL(transfer.ToLamports(m.form.Amount()))
}

func (m TransferModel) View() string {
	if m.quitting {
		return ""
	}
	if m.picking {
		return m.picker.View()
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("◎ solsend · "+ChainName(string(m.session.Network()))) + "\n")

	if pub, ok := m.session.PublicKey(); ok {
		sb.WriteString(Meta("Wallet   ") + Addr(pub.String()) + "\n\n")
	} else {
		sb.WriteString(Meta("Wallet   ") + StyleWarning.Render("not connected") + "\n\n")
	}

	sb.WriteString(m.renderField(fieldAmount, "Amount (SOL)", m.amount))
	sb.WriteString(m.renderField(fieldRecipient, "Recipient", m.recipient))
	sb.WriteString("\n")

	button := "[ Send ]"
	if m.focus == fieldSend {
		sb.WriteString("  " + StyleSelected.Render(button) + "\n\n")
	} else {
		sb.WriteString("  " + StyleValue.Render(button) + "\n\n")
	}

	sb.WriteString(m.renderStatus() + "\n\n")
	help := "[ tab ] next   [ enter ] send   [ ctrl+k ] connect   [ ctrl+d ] disconnect   [ esc ] quit"
	if m.lastSig != "" {
		help += "\n[ ctrl+o ] open in explorer   [ ctrl+y ] copy signature"
	}
	sb.WriteString(StyleMeta.Render(help) + "\n")
	return StyleBorder.Render(sb.String()) + "\n"
}

func (m TransferModel) renderField(f formField, label, value string) string {
	cursor := " "
	prefix := "  "
	if m.focus == f {
		cursor = "█"
		prefix = "▸ "
	}
	return prefix + StyleMeta.Render(padR(label, 14)) + StyleValue.Render(value) + cursor + "\n"
}

func (m TransferModel) renderStatus() string {
	text := m.status
	if m.busy() {
		text = StyleChain.Render(spinFrames[m.frame]) + " " + text
	}
	switch m.statusKind {
	case statusOK:
		return Success(text)
	case statusErr:
		return Err(text)
	default:
		return Info(text)
	}
}
