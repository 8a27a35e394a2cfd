package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/mcq-eval/internal/adapter"
	"github.com/stellarlinkco/mcq-eval/internal/config"
)

type cliState struct {
	configPath string
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "mcq-eval",
		Short:         "Evaluate models on multiple-choice datasets",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newListCmd())
	root.AddCommand(newLeaderboardCmd(st))
	return root
}

// newAdapterRegistry is the composition root for dataset adapters. Adding a
// dataset means registering its adapter here.
func newAdapterRegistry() *adapter.Registry {
	r := adapter.NewRegistry()
	r.Register(adapter.NewGeneralMCQ())
	return r
}
