package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/price"
	"github.com/Mohsinsiddi/solsend/internal/provider"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address|wallet]",
	Short: "Show the SOL balance of an account",
	Long: `Show the SOL balance of an address or a named wallet.

Without an argument the connected wallet is used, falling back to the
default keychain wallet.

Examples:
  solsend balance
  solsend balance savings
  solsend balance 7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2 --network devnet
  solsend balance --live --interval 5s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := newProvider(ctx)
		if err != nil {
			return err
		}

		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		account, err := resolveAccount(ctx, p, target)
		if err != nil {
			return err
		}

		if balanceLive {
			return watchBalance(ctx, p, account, balanceInterval)
		}

		ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		spin := ui.NewSpinner("Fetching balance...")
		spin.Start()
		bal, err := solanaClient(p).GetBalance(ctx, account)
		spin.Stop()
		if err != nil {
			return err
		}

		rows := [][2]string{
			{"Address", ui.Addr(account.String())},
			{"Network", ui.ChainName(string(p.Network()))},
			{"Balance", bal.SOL + " SOL"},
			{"Lamports", strconv.FormatUint(bal.Lamports, 10)},
		}
		if v, ok := fiatValue(ctx, p.Network(), bal.Lamports, balanceCurrency); ok {
			rows = append(rows, [2]string{"Value", v})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Balance on "+string(p.Network()), rows))
		return nil
	},
}

var (
	balanceLive     bool
	balanceInterval time.Duration
	balanceCurrency string
)

func init() {
	balanceCmd.Flags().BoolVar(&balanceLive, "live", false, "keep polling and show the change since start")
	balanceCmd.Flags().DurationVar(&balanceInterval, "interval", 10*time.Second, "polling interval for --live")
	balanceCmd.Flags().StringVar(&balanceCurrency, "currency", "usd", "fiat currency for the mainnet value")
}

// fiatValue quotes lamports in currency. Only mainnet SOL has a
// market price; lookup failures are logged and the row is skipped.
func fiatValue(ctx context.Context, n chain.Network, lamports uint64, currency string) (string, bool) {
	if n != chain.MainnetBeta {
		return "", false
	}
	f := price.NewFetcher(currency)
	p, err := f.SOL(ctx)
	if err != nil {
		logger.Debug("price lookup failed", zap.Error(err))
		return "", false
	}
	return "≈ " + price.Format(price.Value(lamports, p), f.Currency()), true
}

// watchBalance runs the live dashboard for one account.
func watchBalance(ctx context.Context, p *provider.Provider, account solana.PublicKey, interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("--interval must be at least 1s, got %s", interval)
	}
	client := solanaClient(p)
	network := string(p.Network())
	fetch := func(ctx context.Context) ([]ui.BalanceEntry, error) {
		ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		bal, err := client.GetBalance(ctx, account)
		if err != nil {
			return nil, err
		}
		return []ui.BalanceEntry{{Network: network, Address: account.String(), Lamports: bal.Lamports}}, nil
	}
	_, err := ui.NewDashboard(ctx, interval, fetch).Run()
	return err
}

// resolveAccount turns an address, a wallet name or nothing into a public
// key. Nothing means the connected wallet, then the default wallet.
func resolveAccount(ctx context.Context, p *provider.Provider, target string) (solana.PublicKey, error) {
	if target != "" {
		if pk, err := solana.PublicKeyFromBase58(target); err == nil {
			return pk, nil
		}
		w, err := newWalletManager().Get(target)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("%q is neither an address nor a wallet — run `solsend wallet list`", target)
		}
		return w.PublicKey()
	}

	if err := ensureConnected(ctx, p); err == nil {
		if pk, ok := p.PublicKey(); ok {
			return pk, nil
		}
	}
	if w := newWalletManager().Default(); w != nil {
		return w.PublicKey()
	}
	return solana.PublicKey{}, fmt.Errorf("no account given — pass an address, connect a wallet, or run `solsend wallet use <name>`")
}

// solanaClient returns the provider's shared client.
func solanaClient(p *provider.Provider) *chain.SolanaClient {
	if c, ok := p.Connection().(*chain.SolanaClient); ok {
		return c
	}
	return chain.NewSolanaClient(p.Endpoint(), chain.WithLogger(logger))
}
