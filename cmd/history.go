package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPlain bool
)

var historyCmd = &cobra.Command{
	Use:   "history [address|wallet]",
	Short: "List an account's recent transactions",
	Long: `List the latest transaction signatures of an account.

The interactive view lets you open a transaction in Solana Explorer or copy
its signature. Use --plain for a static table.

Examples:
  solsend history
  solsend history savings --limit 50
  solsend history 7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2 --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit < 1 || historyLimit > 1000 {
			return fmt.Errorf("--limit must be between 1 and 1000, got %d", historyLimit)
		}
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
		cluster, err := chain.NewRegistry().Get(p.Network())
		if err != nil {
			return err
		}

		client := solanaClient(p)
		fetch := func(ctx context.Context) ([]chain.SignatureInfo, error) {
			ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
			defer cancel()
			return client.RecentSignatures(ctx, account, historyLimit)
		}

		if !historyPlain {
			return ui.RunHistory(ctx, account.String(), cluster, fetch)
		}

		spin := ui.NewSpinner("Fetching signatures...")
		spin.Start()
		sigs, err := fetch(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sigs) == 0 {
			fmt.Fprintln(out, ui.Meta("No transactions found for "+account.String()))
			return nil
		}
		fmt.Fprintln(out, ui.SignatureTable(sigs).Render())
		fmt.Fprintln(out, ui.Hint(cluster.ExplorerAddress(account.String())))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of signatures to fetch (max 1000)")
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "print a static table instead of the interactive view")
}
