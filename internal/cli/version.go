package cli

import (
	"fmt"

	"github.com/andywolf/ytcomments/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including commit hash and build date.

With --verbose the API user agent is printed as well.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			fmt.Fprintln(out, version.Info())
			return
		}
		fmt.Fprintln(out, version.Full())
		fmt.Fprintln(out, "User agent:", version.UserAgent())
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "print verbose version information")
	rootCmd.AddCommand(versionCmd)
}
