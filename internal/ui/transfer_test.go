package ui

import (
	"context"
	"testing"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/chain/chaintest"
	"github.com/Mohsinsiddi/solsend/internal/provider"
	"github.com/Mohsinsiddi/solsend/internal/transfer"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const recipientAddr = "SysvarC1ock11111111111111111111111111111111"

type screen struct {
	p    *provider.Provider
	form *transfer.Form
	conn *chaintest.MockConnection
	key  solana.PrivateKey
}

func newScreen(t *testing.T, network chain.Network, withKey bool) (*screen, TransferModel) {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	getenv := func(string) string {
		if withKey {
			return key.String()
		}
		return ""
	}
	store := wallet.NewSessionStore(t.TempDir())
	conn := new(chaintest.MockConnection)
	p := provider.New(network,
		provider.WithConnection(conn),
		provider.WithSessionStore(store),
		provider.WithConnectors(func(n chain.Network, s *wallet.SessionStore) []wallet.Connector {
			return []wallet.Connector{wallet.NewEnvConnector(getenv), wallet.NewBurnerConnector(n, s)}
		}))
	form := transfer.NewForm(p.View(), p.Connection(), transfer.WithRecipient(recipientAddr))
	s := &screen{p: p, form: form, conn: conn, key: key}
	return s, NewTransferModel(context.Background(), p, form)
}

// drain runs cmd and every command it batches, feeding the resulting
// messages back into m. Spinner ticks are dropped.
func drain(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case formTickMsg, nil:
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

func ctrl(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestTransferModelStartsFromFormValues(t *testing.T) {
	_, m := newScreen(t, chain.Devnet, true)
	assert.Equal(t, "0.1", m.amount)
	assert.Equal(t, recipientAddr, m.recipient)
	assert.Equal(t, statusInfo, m.statusKind)
	assert.Contains(t, m.View(), "not connected")
	assert.Contains(t, m.View(), "devnet")
}

func TestTransferModelEditsOnlyFocusedField(t *testing.T) {
	s, m := newScreen(t, chain.Devnet, true)

	next, _ := press(m, "2", "5")
	assert.InDelta(t, 0.125, s.form.Amount(), 1e-12)
	assert.Equal(t, recipientAddr, s.form.Recipient())

	next, _ = press(next, "tab", "backspace")
	assert.Equal(t, recipientAddr[:len(recipientAddr)-1], s.form.Recipient())
	assert.InDelta(t, 0.125, s.form.Amount(), 1e-12)

	next, _ = press(next, "tab", "x")
	assert.Equal(t, fieldSend, next.(TransferModel).focus)
	assert.Equal(t, recipientAddr[:len(recipientAddr)-1], s.form.Recipient(), "typing on the button edits nothing")
}

func TestTransferModelClearedAmountIsZero(t *testing.T) {
	s, m := newScreen(t, chain.Devnet, true)
	press(m, "backspace", "backspace", "backspace")
	assert.Zero(t, s.form.Amount())
}

func TestTransferModelSubmitNotConnected(t *testing.T) {
	s, m := newScreen(t, chain.Devnet, true)

	next, cmd := m.Update(ctrl(tea.KeyCtrlS))
	assert.Equal(t, 1, next.(TransferModel).pending)
	next = drain(t, next, cmd)

	tm := next.(TransferModel)
	assert.Equal(t, 0, tm.pending)
	assert.Equal(t, statusErr, tm.statusKind)
	assert.Contains(t, tm.status, "not connected")
	assert.Empty(t, tm.lastSig)
	s.conn.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestTransferModelConnectAndSend(t *testing.T) {
	s, m := newScreen(t, chain.Devnet, true)
	sig := solana.Signature{7, 7, 7}
	s.conn.On("LatestBlockhash", mock.Anything).Return(solana.Hash{1}, nil).Once()
	s.conn.On("SendTransaction", mock.Anything, mock.Anything).Return(sig, nil).Once()
	s.conn.On("ConfirmTransaction", mock.Anything, sig, rpc.CommitmentProcessed).Return(nil).Once()

	next, _ := m.Update(ctrl(tea.KeyCtrlK))
	require.True(t, next.(TransferModel).picking)
	assert.Contains(t, next.View(), "Connect a wallet")

	next, cmd := press(next, "enter") // env is first and available
	next = drain(t, next, cmd)

	tm := next.(TransferModel)
	require.False(t, tm.picking)
	assert.Equal(t, statusOK, tm.statusKind)
	assert.Equal(t, provider.Connected, s.p.State())
	assert.Contains(t, tm.View(), s.key.PublicKey().String())

	next, cmd = press(next, "tab", "tab", "enter")
	next = drain(t, next, cmd)

	tm = next.(TransferModel)
	assert.Equal(t, statusOK, tm.statusKind, tm.status)
	assert.Contains(t, tm.status, "0.1")
	assert.Equal(t, sig.String(), tm.lastSig)
	assert.Contains(t, tm.View(), "ctrl+o")
	s.conn.AssertExpectations(t)
}

func TestTransferModelConfirmFailureKeepsSignature(t *testing.T) {
	s, m := newScreen(t, chain.Devnet, true)
	_, err := s.p.Connect(context.Background(), wallet.ConnectorEnv)
	require.NoError(t, err)

	sig := solana.Signature{9}
	s.conn.On("LatestBlockhash", mock.Anything).Return(solana.Hash{1}, nil)
	s.conn.On("SendTransaction", mock.Anything, mock.Anything).Return(sig, nil)
	s.conn.On("ConfirmTransaction", mock.Anything, sig, rpc.CommitmentProcessed).Return(context.DeadlineExceeded)

	next, cmd := m.Update(ctrl(tea.KeyCtrlS))
	tm := drain(t, next, cmd).(TransferModel)

	assert.Equal(t, statusErr, tm.statusKind)
	assert.Contains(t, tm.status, "context deadline")
	assert.Equal(t, sig.String(), tm.lastSig)
}

func TestTransferModelPickerMarksUnavailable(t *testing.T) {
	_, m := newScreen(t, chain.MainnetBeta, false)

	next, _ := m.Update(ctrl(tea.KeyCtrlK))
	tm := next.(TransferModel)
	require.True(t, tm.picking)
	for _, item := range tm.picker.items {
		assert.True(t, item.Disabled, item.Label)
	}

	// Nothing can be picked; esc closes the picker but not the screen.
	next, cmd := press(tm, "enter", "esc")
	assert.Nil(t, cmd)
	assert.False(t, next.(TransferModel).picking)
	assert.False(t, next.(TransferModel).quitting)
}

func TestTransferModelDisconnect(t *testing.T) {
	s, m := newScreen(t, chain.Devnet, true)
	_, err := s.p.Connect(context.Background(), wallet.ConnectorEnv)
	require.NoError(t, err)

	next, cmd := m.Update(ctrl(tea.KeyCtrlD))
	tm := drain(t, next, cmd).(TransferModel)

	assert.Equal(t, "Disconnected", tm.status)
	assert.Equal(t, provider.Disconnected, s.p.State())
	assert.Contains(t, tm.View(), "not connected")
}

func TestTransferModelQuit(t *testing.T) {
	_, m := newScreen(t, chain.Devnet, true)
	next, cmd := m.Update(ctrl(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.True(t, next.(TransferModel).quitting)
	assert.Empty(t, next.View())
}

func TestTransferModelSpinnerStopsWhenIdle(t *testing.T) {
	_, m := newScreen(t, chain.Devnet, true)
	m.pending = 1
	_, cmd := m.Update(formTickMsg{})
	assert.NotNil(t, cmd)

	m.pending = 0
	_, cmd = m.Update(formTickMsg{})
	assert.Nil(t, cmd)
}

func TestFormTickInterval(t *testing.T) {
	start := time.Now()
	msg := formTick()()
	assert.IsType(t, formTickMsg{}, msg)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
