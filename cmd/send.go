package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/provider"
	"github.com/Mohsinsiddi/solsend/internal/transfer"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	sendTo     string
	sendAmount string
	sendYes    bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send SOL to a recipient",
	Long: `Send SOL from the connected wallet with a single System Program transfer
and wait until the cluster has processed it.

The amount is in SOL and defaults to 0.1. It is converted to lamports
rounding down, so anything that does not parse as a positive number sends
0 lamports.

Examples:
  solsend send --to 7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2
  solsend send --to 7Np4...T4K2 --amount 0.5 --network devnet
  solsend send --to 7Np4...T4K2 --connector burner --network devnet --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		p, err := newProvider(ctx)
		if err != nil {
			return err
		}
		if err := ensureConnected(ctx, p); err != nil {
			return err
		}

		form := transfer.NewForm(p.View(), p.Connection(), transfer.WithLogger(logger))
		if cmd.Flags().Changed("amount") {
			form.OnAmountChange(sendAmount)
		}
		form.OnRecipientChange(sendTo)

		from := ui.Meta("(not connected)")
		if pub, ok := p.PublicKey(); ok {
			from = ui.Addr(pub.String())
		}
		lamports := transfer.ToLamports(form.Amount())
		fmt.Fprintln(out, ui.KeyValueBlock("Transfer Preview", [][2]string{
			{"From", from},
			{"To", ui.Addr(form.Recipient())},
			{"Amount", chain.LamportsToSOL(lamports) + " SOL"},
			{"Lamports", strconv.FormatUint(lamports, 10)},
			{"Network", ui.ChainName(string(p.Network()))},
			{"Connector", p.ConnectorName()},
		}))

		if p.Network() == chain.MainnetBeta && !sendYes && p.State() == provider.Connected {
			if !ui.ConfirmDanger("Send real SOL on mainnet-beta?") {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
		}

		spin := ui.NewSpinner("Sending and waiting for processed commitment...")
		spin.Start()
		res, err := form.Submit(ctx)
		spin.Stop()

		if res != nil {
			printSignature(cmd, p.Network(), res.Signature.String())
		}
		if err != nil {
			if errors.Is(err, wallet.ErrNotConnected) {
				fmt.Fprintln(out, ui.Hint("Connect first: solsend connect <keychain|keyfile|env|burner>"))
			}
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Sent %s SOL to %s", res.Request.SOL(), res.Request.Destination)))
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (base58)")
	sendCmd.Flags().StringVar(&sendAmount, "amount", strconv.FormatFloat(transfer.DefaultAmount, 'f', -1, 64), "amount in SOL")
	sendCmd.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip the mainnet confirmation prompt")
}

// printSignature prints a transaction signature and its explorer link.
func printSignature(cmd *cobra.Command, n chain.Network, sig string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Addr("Signature: "+sig))
	if c, err := chain.NewRegistry().Get(n); err == nil {
		fmt.Fprintln(out, ui.Meta(c.ExplorerTx(sig)))
	}
}
