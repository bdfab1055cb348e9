package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetNetworkCmd = &cobra.Command{
	Use:   "set-network <network>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetNetwork(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default network set to %q", cfg.Network)))
		return nil
	},
}

var configSetConnectorCmd = &cobra.Command{
	Use:   "set-connector <keychain|keyfile|env|burner|none>",
	Short: "Set the connector used when nothing is remembered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "none" {
			name = ""
		}
		if err := cfg.SetConnector(name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		if name == "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Default connector cleared"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default connector set to %q", name)))
		return nil
	},
}

var configSetKeyfileCmd = &cobra.Command{
	Use:   "set-keyfile <path>",
	Short: "Set the solana-keygen file used by the keyfile connector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Keyfile = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Keyfile set to %s", args[0])))
		return nil
	},
}

var configSetConfirmTimeoutCmd = &cobra.Command{
	Use:   "set-confirm-timeout <duration>",
	Short: "Set how long send waits for processed commitment",
	Long: `Set how long send waits for the transaction to reach processed
commitment, as a Go duration.

Examples:
  solsend config set-confirm-timeout 90s
  solsend config set-confirm-timeout 2m`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", args[0], err)
		}
		if err := cfg.SetConfirmTimeout(d); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Confirm timeout set to "+cfg.ConfirmTimeoutDuration().String()))
		return nil
	},
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetNetworkCmd,
		configSetConnectorCmd,
		configSetKeyfileCmd,
		configSetConfirmTimeoutCmd,
	)
}
