package cmd

import (
	"github.com/Mohsinsiddi/solsend/internal/transfer"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var formTo string

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Interactive transfer form",
	Long: `Open the interactive transfer screen: an amount field (default 0.1 SOL),
a recipient field, a send button and a connect/disconnect control.

The wallet remembered for the network is reconnected on start.

Keys:
  tab / shift+tab   move between fields
  enter / ctrl+s    send
  ctrl+k            connect a wallet
  ctrl+d            disconnect
  ctrl+o / ctrl+y   open / copy the last signature
  esc               quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := newProvider(ctx)
		if err != nil {
			return err
		}
		// A failed reconnect leaves the screen disconnected; the user can
		// pick another connector from there.
		if err := ensureConnected(ctx, p); err != nil {
			logger.Debug("startup connect failed", zap.Error(err))
		}

		form := transfer.NewForm(p.View(), p.Connection(),
			transfer.WithLogger(logger),
			transfer.WithRecipient(formTo))
		return ui.RunTransfer(ctx, p, form)
	},
}

func init() {
	formCmd.Flags().StringVar(&formTo, "to", "", "prefill the recipient")
}
