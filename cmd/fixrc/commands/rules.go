package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fixrc/cmd/fixrc/opts"
	"github.com/walteh/fixrc/pkg/log"
)

// NewRulesCmd creates the rules command
func NewRulesCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List registered stages and rules in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			console := log.New(os.Stdout, zerolog.Disabled)
			console.Header("registered rules")

			for _, stage := range root.Registry.Stages() {
				fmt.Fprintf(os.Stdout, "%s\n", color.New(color.Bold, color.FgCyan).Sprint(stage.Name))
				for _, rl := range stage.Rules {
					tags := ""
					if len(rl.Tags()) > 0 {
						tags = color.New(color.Faint).Sprint(" [" + strings.Join(rl.Tags(), ", ") + "]")
					}
					fmt.Fprintf(os.Stdout, "    %s%s\n", rl.ID(), tags)
				}
			}
			return nil
		},
	}
}
