package cli

import (
	"fmt"
	"runtime"

	"github.com/gear6io/mtgapi/server/config"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mtgapi %s (%s %s/%s)\n",
				config.DEFAULT_API_VERSION, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
