package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/rpc"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
	Long: `Manage custom RPC endpoints per network. When a network has custom
RPCs the best of them is used instead of the public cluster endpoint,
chosen with the configured algorithm.`,
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.ParseNetwork(args[0])
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(string(n), args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(string(n)), args[1])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chain.ParseNetwork(args[0])
		if err != nil {
			return err
		}
		if err := cfg.RemoveRPC(string(n), args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", n, args[1])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List the RPCs for a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := networkArg(args)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, ui.StyleTitle.Render("RPCs for "+c.DisplayName))
		fmt.Fprintln(out, ui.StyleHeader.Render("Cluster:"))
		fmt.Fprintf(out, "  %s\n", c.RPC)

		custom := cfg.GetRPCs(string(c.Network))
		if len(custom) == 0 {
			fmt.Fprintln(out, ui.Meta("No custom RPCs; the cluster endpoint is used."))
			return nil
		}
		fmt.Fprintln(out, ui.StyleHeader.Render(fmt.Sprintf("Custom RPCs (%s):", cfg.RPCAlgorithm)))
		for _, r := range custom {
			fmt.Fprintf(out, "  %s\n", r)
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [network]",
	Short: "Benchmark the cluster and custom RPCs of a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := networkArg(args)
		if err != nil {
			return err
		}

		urls := append([]string{c.RPC}, cfg.GetRPCs(string(c.Network))...)
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", c.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		results := rpc.Benchmark(ctx, urls)
		endpoints := rpc.ResultsToEndpoints(results)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 40},
			{Title: "Latency", Width: 10},
			{Title: "Slot", Width: 12},
			{Title: "Status", Width: 10},
		})
		for i, e := range endpoints {
			latency := fmt.Sprintf("%dms", e.Latency.Milliseconds())
			slot := fmt.Sprintf("%d", e.Slot)
			status := ui.Success("healthy")
			switch {
			case results[i].Err != nil:
				status, latency, slot = ui.Err("down"), "—", "—"
			case !e.Healthy:
				status = ui.Warn("stale")
			}
			t.AddRow(ui.Row{e.URL, latency, slot, status})
		}
		fmt.Fprintln(out, t.Render())

		if best, err := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm)).Pick(endpoints); err == nil {
			fmt.Fprintln(out, ui.Info(fmt.Sprintf("%s picks %s", cfg.RPCAlgorithm, best.URL)))
		}
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set the RPC selection algorithm",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.RPCAlgorithm)
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:   "set <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetAlgorithm(args[0]); err != nil {
			return fmt.Errorf("%w — choose: %s", err, algorithmNames())
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", cfg.RPCAlgorithm)))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}

// networkArg resolves an optional network argument, defaulting to the
// active network.
func networkArg(args []string) (*chain.Cluster, error) {
	var (
		n   chain.Network
		err error
	)
	if len(args) == 1 {
		n, err = chain.ParseNetwork(args[0])
	} else {
		n, err = activeNetwork()
	}
	if err != nil {
		return nil, err
	}
	return chain.NewRegistry().Get(n)
}

func algorithmNames() string {
	var names []string
	for _, a := range rpc.Algorithms() {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}
