package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/finewiki/finewiki-mcp/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var (
		jsonOutput  bool
		shortOutput bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the binary version along with its git commit, build date, and Go toolchain.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout(), shortOutput, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// printVersion renders one of the three version views. Short wins over
// JSON when both flags are set.
func printVersion(w io.Writer, short, asJSON bool) error {
	switch {
	case short:
		_, err := fmt.Fprintln(w, version.Short())
		return err
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetInfo())
	default:
		_, err := fmt.Fprintln(w, version.String())
		return err
	}
}
