package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/transfer"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
)

var airdropTo string

var airdropCmd = &cobra.Command{
	Use:   "airdrop [amount]",
	Short: "Request SOL from the cluster faucet",
	Long: `Request an airdrop (default 1 SOL) from the RPC faucet of devnet,
testnet or a local validator, and wait until it is confirmed.

The account is --to, else the connected wallet, else the default wallet.

Examples:
  solsend airdrop --network devnet
  solsend airdrop 2 --connector burner --network devnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		p, err := newProvider(ctx)
		if err != nil {
			return err
		}

		cluster, err := chain.NewRegistry().Get(p.Network())
		if err != nil {
			return err
		}
		if !cluster.Airdrop {
			return fmt.Errorf("%s has no faucet — use --network devnet or testnet", p.Network())
		}

		amount := 1.0
		if len(args) == 1 {
			amount = transfer.ParseAmount(args[0])
		}
		lamports := transfer.ToLamports(amount)
		if lamports == 0 {
			return fmt.Errorf("invalid airdrop amount %q", args[0])
		}

		account, err := resolveAccount(ctx, p, airdropTo)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, config.AirdropTimeout)
		defer cancel()
		client := solanaClient(p)

		spin := ui.NewSpinner(fmt.Sprintf("Requesting %s SOL...", chain.LamportsToSOL(lamports)))
		spin.Start()
		sig, err := client.RequestAirdrop(ctx, account, lamports)
		if err == nil {
			err = client.ConfirmTransaction(ctx, sig, rpc.CommitmentConfirmed)
		}
		spin.Stop()
		if err != nil {
			if cluster.FaucetURL != "" {
				fmt.Fprintln(out, ui.Hint("Rate limited? Try the web faucet: "+cluster.FaucetURL))
			}
			return fmt.Errorf("airdrop: %w", err)
		}

		printSignature(cmd, p.Network(), sig.String())
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Airdropped %s SOL to %s", chain.LamportsToSOL(lamports), ui.Addr(account.String()))))
		return nil
	},
}

func init() {
	airdropCmd.Flags().StringVar(&airdropTo, "to", "", "address or wallet name to fund")
}
