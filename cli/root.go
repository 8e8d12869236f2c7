// Package cli is the okinoko-grants command line: it runs contract actions
// against a local host backed by the configured store.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"okinoko_grants/config"
	"okinoko_grants/contract"
	"okinoko_grants/scenario"
	"okinoko_grants/sdk"
)

const (
	Version = "0.1.0"
	appName = "okinoko-grants"
)

type rootFlags struct {
	configPath  string
	as          string
	at          string
	logLevel    string
	showMetrics bool
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Permissioned grant disbursement governance",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `okinoko-grants runs the grants governance contract on a local host.

Registered institutions submit disbursement proposals, voting members vote
within the voting window, and approved proposals are paid from the pooled
treasury.`,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.as, "as", "", "Sender address of the invocation")
	pf.StringVar(&flags.at, "at", "", "Block time (unix seconds or RFC3339), default now")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	pf.BoolVar(&flags.showMetrics, "metrics", false, "Print contract metrics after the command")

	cmd.AddCommand(
		callCmd(flags),
		scenarioCmd(flags),
		balanceCmd(flags),
		fundCmd(flags),
		actionsCmd(),
		versionCmd(),
	)
	return cmd
}

func (f *rootFlags) load() (*app, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return newApp(cfg)
}

func (f *rootFlags) blockTime() (time.Time, error) {
	if strings.TrimSpace(f.at) == "" {
		return time.Time{}, nil
	}
	return scenario.ParseTimestamp(f.at)
}

// withApp opens the app, runs fn and closes it again.
func (f *rootFlags) withApp(cmd *cobra.Command, fn func(a *app) error) (err error) {
	a, err := f.load()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(a); err != nil {
		return err
	}
	if f.showMetrics {
		return a.writeMetrics(cmd.OutOrStdout())
	}
	return nil
}

func callCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "call <action> [payload]",
		Short: "Invoke one contract action",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := flags.blockTime()
			if err != nil {
				return err
			}
			payload := ""
			if len(args) == 2 {
				payload = args[1]
			}
			return flags.withApp(cmd, func(a *app) error {
				var out string
				err := a.host.Invoke(sdk.Address(flags.as), at, func() error {
					var err error
					out, err = a.contract.Dispatch(args[0], payload)
					return err
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func scenarioCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file.yaml>",
		Short: "Replay a scenario file step by step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			return flags.withApp(cmd, func(a *app) error {
				report, err := sc.Run(a.host, a.contract, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if n := report.Failed(); n > 0 {
					return fmt.Errorf("%d of %d steps: %w", n, len(report.Results), errScenarioFailed)
				}
				return nil
			})
		},
	}
}

func balanceCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show the ledger balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, func(a *app) error {
				bal, err := a.host.Balance(sdk.Address(args[0]), contract.TreasuryAsset)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", contract.Amount(bal), contract.TreasuryAsset)
				return nil
			})
		},
	}
}

func fundCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fund <address> <amount>",
		Short: "Credit ledger funds to an address (local host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := contract.ParseAmount(args[1])
			if err != nil {
				return err
			}
			return flags.withApp(cmd, func(a *app) error {
				return a.host.Credit(sdk.Address(args[0]), int64(amount), contract.TreasuryAsset)
			})
		},
	}
}

func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List contract actions",
		Run: func(cmd *cobra.Command, args []string) {
			for _, a := range contract.Actions() {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}
