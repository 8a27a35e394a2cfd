package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered dataset adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := newAdapterRegistry()
			out := cmd.OutOrStdout()

			for _, name := range registry.Names() {
				a, ok := registry.Get(name)
				if !ok {
					continue
				}
				info := a.Info()
				fmt.Fprintf(out, "%s\t%s\t[%s]\n", info.Name, info.PrettyName, strings.Join(info.Tags, ","))
				fmt.Fprintf(out, "\tsubsets=%s splits=%s/%s metrics=%s few_shot=%d\n",
					strings.Join(info.SubsetList, ","),
					info.TrainSplit,
					info.EvalSplit,
					strings.Join(info.MetricList, ","),
					info.FewShotNum,
				)
			}
			return nil
		},
	}
}
