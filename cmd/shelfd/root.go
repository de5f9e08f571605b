package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadzzz/shelfd/internal/config"
)

// app carries state shared by the subcommands.
type app struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "shelfd",
		Short: "Inventory query mediator for a voice assistant",
		Long: `shelfd turns free-text inventory questions ("where are the 47k resistors?")
into prompts for a locally hosted language model and returns an answer that
can always be spoken.

Run "shelfd serve" on the machine hosting the model; "ask" and "intent" talk
to a running server the way the voice assistant does.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.SetupLogging(cfg.Logging)
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "path to config file (e.g. configs/shelfd.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newAskCmd(a),
		newIntentCmd(a),
		newCheckCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// needsConfig reports whether cmd reads the configuration. Version, help and
// shell completion must keep working when the config file is broken.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}
