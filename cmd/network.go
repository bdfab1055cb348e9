package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage Solana clusters",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "", Width: 1},
			{Title: "Network", Width: 13},
			{Title: "Display", Width: 22},
			{Title: "RPC", Width: 36},
			{Title: "Airdrop", Width: 7},
		})

		for _, c := range reg.All() {
			active := ""
			if string(c.Network) == cfg.Network {
				active = "*"
			}
			airdrop := "no"
			if c.Airdrop {
				airdrop = "yes"
			}
			t.AddRow(ui.Row{active, ui.ChainName(string(c.Network)), c.DisplayName, c.RPC, airdrop})
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta(fmt.Sprintf("%d clusters total", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Set the default network",
	Long: `Set the default cluster and persist it to config.

Examples:
  solsend network use devnet
  solsend network use mainnet      # alias of mainnet-beta`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetNetwork(args[0]); err != nil {
			return fmt.Errorf("%w — run `solsend network list` to see all clusters", err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %s", ui.ChainName(cfg.Network))))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
