// Command avmtool is a small debugging front end for the runtime's name
// machinery: it parses qualified names and inspects namespace allocation.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oxhq/avmcore/internal/config"
	"github.com/oxhq/avmcore/loader"
	"github.com/oxhq/avmcore/names"
	"github.com/oxhq/avmcore/vm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "avmtool",
		Short:        "Inspect the VM's names and namespaces",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			cfg := config.Load()
			lvl, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				lvl = zerolog.InfoLevel
			}
			l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
			vm.SetLogger(l)
			loader.SetLogger(l)
		},
	}
	root.AddCommand(newQNameCmd(), newPrivateNSCmd())
	return root
}

func newQNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qname <name>...",
		Short: "Parse qualified names and print their components",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				q := names.MustParseQName(arg)
				local := q.Local()
				if !q.HasLocal() {
					local = "<any>"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tns=%s kind=%s local=%s\n",
					arg, q.Namespace(), q.Namespace().Kind(), local)
			}
			return nil
		},
	}
}

func newPrivateNSCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "privatens",
		Short: "Allocate private namespaces and print their ids",
		RunE: func(cmd *cobra.Command, []string) error {
			for i := 0; i < count; i++ {
				ns, err := names.NewPrivateNamespace()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ns)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many ids to allocate")
	return cmd
}
