package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/provider"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect [connector]",
	Short: "Connect a wallet and remember it for this network",
	Long: `Authorize a wallet connector and remember it, so later commands on the
same network reconnect it automatically.

Without an argument an interactive picker lists the connectors.

Examples:
  solsend connect keychain
  solsend connect burner --network devnet
  SOLSEND_PRIVATE_KEY=... solsend connect env`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		p, err := newProvider(ctx)
		if err != nil {
			return err
		}

		name := connectorFlag
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			name, err = ui.PickItem("Connect a wallet  ·  "+string(p.Network()), connectorItems(p))
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
		}

		ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
		pub, err := p.Connect(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Connected %s on %s: %s", name, ui.ChainName(string(p.Network())), ui.Addr(pub.String()))))
		if name == wallet.ConnectorBurner {
			fmt.Fprintln(out, ui.Hint("Fund it with: solsend airdrop 1 --network "+string(p.Network())))
		}
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the wallet remembered for this network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvider(cmd.Context())
		if err != nil {
			return err
		}
		if err := p.Disconnect(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Disconnected from "+string(p.Network())))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show network, endpoint and wallet session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := newProvider(ctx)
		if err != nil {
			return err
		}
		connectErr := ensureConnected(ctx, p)

		who := ui.Meta("(not connected)")
		if pub, ok := p.PublicKey(); ok {
			who = ui.Addr(pub.String())
		}
		connector := p.ConnectorName()
		if connector == "" {
			connector = ui.Meta("—")
		}

		pairs := [][2]string{
			{"Network", ui.ChainName(string(p.Network()))},
			{"Endpoint", p.Endpoint()},
			{"State", p.State().String()},
			{"Connector", connector},
			{"Wallet", who},
			{"Algorithm", cfg.RPCAlgorithm},
			{"Confirm wait", cfg.ConfirmTimeoutDuration().String()},
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("solsend status", pairs))
		if connectErr != nil {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("Reconnect failed: "+connectErr.Error()))
		}
		return nil
	},
}

var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "List wallet connectors for the network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvider(cmd.Context())
		if err != nil {
			return err
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Connector", Width: 10},
			{Title: "Available", Width: 10},
			{Title: "Source", Width: 48},
		})
		for _, c := range p.Connectors() {
			avail := "no"
			if c.Available() {
				avail = "yes"
			}
			t.AddRow(ui.Row{c.Name(), avail, connectorSource(c)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta(fmt.Sprintf("%d connectors on %s", len(p.Connectors()), p.Network())))
		return nil
	},
}

// connectorSource describes where a connector takes its key from.
func connectorSource(c wallet.Connector) string {
	switch c := c.(type) {
	case *wallet.KeychainConnector:
		if w := c.Wallet(); w != nil {
			return "wallet " + w.Name + " (" + ui.TruncateAddr(w.Address) + ")"
		}
		return "OS keychain (no signing wallet)"
	case *wallet.KeyfileConnector:
		return c.Path()
	case *wallet.EnvConnector:
		return "$" + wallet.EnvPrivateKey
	case *wallet.BurnerConnector:
		if c.Available() {
			return "throwaway key for " + string(c.Network())
		}
		return "disabled on " + string(c.Network())
	}
	return c.Name()
}

func connectorItems(p *provider.Provider) []ui.PickerItem {
	var items []ui.PickerItem
	for _, c := range p.Connectors() {
		items = append(items, ui.PickerItem{
			Label:    c.Name(),
			SubLabel: connectorSource(c),
			Value:    c.Name(),
			Disabled: !c.Available(),
		})
	}
	return items
}
