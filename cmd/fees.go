package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var feesTo string

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Estimate the fee of a SOL transfer right now",
	Long: `Price a one-signer SOL transfer at the latest blockhash and show the
prioritization fees recently paid on the accounts involved.

The payer is the connected or default wallet when there is one.

Examples:
  solsend fees
  solsend fees --network devnet --to 7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := newProvider(ctx)
		if err != nil {
			return err
		}

		from, err := resolveAccount(ctx, p, "")
		if err != nil {
			from = solana.NewWallet().PublicKey()
		}
		to := solana.NewWallet().PublicKey()
		if feesTo != "" {
			if to, err = resolveAccount(ctx, p, feesTo); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		spin := ui.NewSpinner("Estimating fees...")
		spin.Start()
		fee, err := solanaClient(p).EstimateTransferFee(ctx, from, to)
		spin.Stop()
		if err != nil {
			return err
		}

		rows := [][2]string{
			{"Network", ui.ChainName(string(p.Network()))},
			{"Base fee", fee.BaseSOL() + " SOL (" + strconv.FormatUint(fee.BaseLamports, 10) + " lamports)"},
		}
		if v, ok := fiatValue(ctx, p.Network(), fee.BaseLamports, "usd"); ok {
			rows = append(rows, [2]string{"Value", v})
		}
		if pr := fee.Priority; pr.Samples > 0 {
			rows = append(rows, [2]string{"Priority fee", fmt.Sprintf("min %d · median %d · max %d µlamports/CU", pr.Min, pr.Median, pr.Max)})
			rows = append(rows, [2]string{"Samples", strconv.Itoa(pr.Samples) + " slots"})
		} else {
			rows = append(rows, [2]string{"Priority fee", ui.Meta("no recent data")})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Transfer fee on "+string(p.Network()), rows))
		return nil
	},
}

func init() {
	feesCmd.Flags().StringVar(&feesTo, "to", "", "recipient address or wallet name")
}
