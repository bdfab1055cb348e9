// Package chaintest provides an in-process Solana JSON-RPC server for tests.
package chaintest

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// DefaultFee is the lamports-per-message getFeeForMessage reports.
const DefaultFee = 5000

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler answers one JSON-RPC method. Returning a non-nil *RPCError sends
// an error response instead of result.
type Handler func(params json.RawMessage) (any, *RPCError)

// Server is a fake Solana RPC node backed by httptest.
type Server struct {
	*httptest.Server

	// Blockhash is returned by getLatestBlockhash.
	Blockhash solana.Hash

	mu       sync.Mutex
	slot     uint64
	handlers map[string]Handler
	calls    map[string]int
	sent     []*solana.Transaction
	statuses map[solana.Signature]string
}

type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// NewServer starts a fake node that accepts every transaction and reports it
// as processed on the first status poll. The server is closed on test cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		slot:     100,
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
		statuses: make(map[solana.Signature]string),
	}
	for i := range s.Blockhash {
		s.Blockhash[i] = byte(i + 1)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetSlot sets the slot reported by getSlot and response contexts.
func (s *Server) SetSlot(slot uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot = slot
}

// Slot returns the current slot.
func (s *Server) Slot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot
}

// Handle overrides the handler for method.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// SetStatus sets the confirmation status reported for sig.
func (s *Server) SetStatus(sig solana.Signature, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[sig] = status
}

// Calls returns how many times method was invoked.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Sent returns every transaction received by sendTransaction, in order.
func (s *Server) Sent() []*solana.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*solana.Transaction, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method]++
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	var (
		result any
		rpcErr *RPCError
	)
	if ok {
		result, rpcErr = h(req.Params)
	} else {
		result, rpcErr = s.builtin(req.Method, req.Params)
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (s *Server) context() map[string]any {
	return map[string]any{"slot": s.Slot()}
}

func (s *Server) builtin(method string, params json.RawMessage) (any, *RPCError) {
	switch method {
	case "getSlot":
		return s.Slot(), nil
	case "getBalance":
		return map[string]any{"context": s.context(), "value": 0}, nil
	case "getLatestBlockhash":
		return map[string]any{
			"context": s.context(),
			"value": map[string]any{
				"blockhash":            solana.PublicKey(s.Blockhash).String(),
				"lastValidBlockHeight": s.Slot() + 150,
			},
		}, nil
	case "sendTransaction":
		return s.acceptTransaction(params)
	case "getSignatureStatuses":
		return s.signatureStatuses(params)
	case "requestAirdrop":
		var sig solana.Signature
		sig[0] = 0xA1
		return sig.String(), nil
	case "getSignaturesForAddress":
		return []any{}, nil
	case "getFeeForMessage":
		return map[string]any{"context": s.context(), "value": DefaultFee}, nil
	case "getRecentPrioritizationFees":
		return []map[string]any{
			{"slot": s.Slot() - 2, "prioritizationFee": 0},
			{"slot": s.Slot() - 1, "prioritizationFee": 1000},
			{"slot": s.Slot(), "prioritizationFee": 50000},
		}, nil
	}
	return nil, &RPCError{Code: -32601, Message: "Method not found"}
}

func (s *Server) acceptTransaction(params json.RawMessage) (any, *RPCError) {
	var args []json.RawMessage
	if err := json.Unmarshal(params, &args); err != nil || len(args) == 0 {
		return nil, &RPCError{Code: -32602, Message: "invalid params"}
	}
	var encoded string
	if err := json.Unmarshal(args[0], &encoded); err != nil {
		return nil, &RPCError{Code: -32602, Message: "invalid transaction param"}
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &RPCError{Code: -32602, Message: "transaction is not base64"}
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil || len(tx.Signatures) == 0 {
		return nil, &RPCError{Code: -32602, Message: "failed to deserialize transaction"}
	}

	s.mu.Lock()
	s.sent = append(s.sent, tx)
	if _, ok := s.statuses[tx.Signatures[0]]; !ok {
		s.statuses[tx.Signatures[0]] = "processed"
	}
	s.mu.Unlock()
	return tx.Signatures[0].String(), nil
}

func (s *Server) signatureStatuses(params json.RawMessage) (any, *RPCError) {
	var args []json.RawMessage
	if err := json.Unmarshal(params, &args); err != nil || len(args) == 0 {
		return nil, &RPCError{Code: -32602, Message: "invalid params"}
	}
	var sigs []string
	if err := json.Unmarshal(args[0], &sigs); err != nil {
		return nil, &RPCError{Code: -32602, Message: "invalid signatures"}
	}

	slot := s.Slot()
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]any, len(sigs))
	for i, str := range sigs {
		sig, err := solana.SignatureFromBase58(str)
		if err != nil {
			continue
		}
		status, ok := s.statuses[sig]
		if !ok {
			continue
		}
		if status == "failed" {
			values[i] = map[string]any{
				"slot": slot, "confirmations": 0, "confirmationStatus": "processed",
				"err": map[string]any{"InstructionError": []any{0, "Custom"}},
			}
			continue
		}
		values[i] = map[string]any{
			"slot": slot, "confirmations": 0, "confirmationStatus": status, "err": nil,
		}
	}
	return map[string]any{"context": map[string]any{"slot": slot}, "value": values}, nil
}
