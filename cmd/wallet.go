package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag        string
	walletMnemonicFlag   string
	walletPassphraseFlag string
	walletAccountFlag    uint32
	walletKeygenOut      string
	walletYes            bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage keychain wallets",
	Long: `Manage the wallets used by the keychain connector. Secrets are stored in
the OS keychain; wallets.json only holds names and addresses.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet from a secret.

Examples:
  solsend wallet add savings 7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2
  solsend wallet add hot --key "$(cat ~/.config/solana/id.json)"
  solsend wallet add hot --mnemonic "word1 word2 ... word12" --account 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		mgr := newWalletManager()

		var (
			w   *wallet.Wallet
			err error
		)
		switch {
		case walletKeyFlag != "":
			w, err = mgr.AddWithKey(name, walletKeyFlag)
		case walletMnemonicFlag != "":
			w, err = mgr.AddWithMnemonic(name, walletMnemonicFlag, walletPassphraseFlag, walletAccountFlag)
		default:
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: solsend wallet add <name> <address>\n  Or for signing: solsend wallet add <name> --key <secret>")
			}
			w = &wallet.Wallet{Name: name, Address: args[1], Type: wallet.TypeWatchOnly}
			err = mgr.Add(name, w)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s wallet %q added: %s", walletTypeLabel(w.Type), name, ui.Addr(w.Address))))
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: solsend wallet use %s", name)))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new wallet from a fresh mnemonic",
	Long: `Generate a 12-word BIP-39 mnemonic, derive the Solana key at
m/44'/501'/0'/0' and store it in the OS keychain.

The mnemonic is displayed ONCE. Write it down; it is not stored anywhere.
With --keygen-out the key is also written as a solana-keygen JSON file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		mgr := newWalletManager()
		mnemonic, w, err := mgr.Generate(name)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
		fmt.Fprintf(out, "  %s  %s\n\n", ui.Meta("Address:"), ui.Addr(w.Address))
		fmt.Fprintln(out, ui.DangerBox(
			ui.Warn("SAVE YOUR MNEMONIC — shown only once. Never share it.")+"\n\n"+
				ui.Val(mnemonic)+"\n\n"+
				ui.Hint("Restore with: solsend wallet add <name> --mnemonic \"...\""),
		))

		if walletKeygenOut != "" {
			key, err := mgr.Key(name)
			if err != nil {
				return err
			}
			if err := wallet.WriteKeygenFile(walletKeygenOut, key); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success("Keypair written to "+walletKeygenOut))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		wallets := newWalletManager().List()

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Create one with: solsend wallet generate main"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = "✓"
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its keychain entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		if !walletYes && !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return fmt.Errorf("wallet %q: %w", name, err)
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the wallet used by the keychain connector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := newWalletManager().SetDefault(name); err != nil {
			return fmt.Errorf("wallet %q: %w — run `solsend wallet list`", name, err)
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "secret key: base58 or solana-keygen JSON array (stored in OS keychain)")
	walletAddCmd.Flags().StringVar(&walletMnemonicFlag, "mnemonic", "", "BIP-39 mnemonic to derive the key from")
	walletAddCmd.Flags().StringVar(&walletPassphraseFlag, "passphrase", "", "BIP-39 passphrase for --mnemonic")
	walletAddCmd.Flags().Uint32Var(&walletAccountFlag, "account", 0, "account index in m/44'/501'/<account>'/0'")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "mnemonic")
	walletGenerateCmd.Flags().StringVar(&walletKeygenOut, "keygen-out", "", "also write the keypair to this solana-keygen file")
	walletRemoveCmd.Flags().BoolVarP(&walletYes, "yes", "y", false, "do not ask for confirmation")

	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "🔑 signing"
	case wallet.TypeWatchOnly:
		return "👁 watch"
	default:
		return t
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}
