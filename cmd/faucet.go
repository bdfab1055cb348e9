package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/spf13/cobra"
)

var faucetOpen bool

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Show the web faucet for the active network",
	Long: `Display the web faucet for devnet or testnet, for when RPC airdrops
are rate limited.

Examples:
  solsend faucet --network devnet
  solsend faucet --network testnet --open`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		n, err := activeNetwork()
		if err != nil {
			return err
		}
		c, err := chain.NewRegistry().Get(n)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s  %s\n\n", ui.ChainName(string(c.Network)), ui.Meta(c.DisplayName))

		if c.FaucetURL == "" {
			if c.Airdrop {
				fmt.Fprintln(out, ui.Info("No web faucet; the local validator serves airdrops."))
				fmt.Fprintln(out, ui.Hint("solsend airdrop 10 --network "+string(n)))
			} else {
				fmt.Fprintln(out, ui.Warn("No faucet on "+string(n)+". Real SOL is needed here."))
			}
			return nil
		}

		fmt.Fprintf(out, "  %s  %s\n", ui.Meta("Faucet  :"), ui.Addr(c.FaucetURL))
		fmt.Fprintf(out, "  %s  %s\n\n", ui.Meta("RPC     :"), c.RPC)

		if faucetOpen {
			fmt.Fprintln(out, ui.Meta("  Opening in browser…"))
			if err := ui.OpenURL(c.FaucetURL); err != nil {
				fmt.Fprintln(out, ui.Warn("Could not open browser: "+err.Error()))
			}
		} else {
			fmt.Fprintln(out, ui.Hint("Tip: add --open to launch in your browser."))
		}
		return nil
	},
}

func init() {
	faucetCmd.Flags().BoolVar(&faucetOpen, "open", false, "open the faucet in the default browser")
}
