// Package cli defines the cobra command tree for cbox.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/commentbox/internal/client"
	"github.com/evcraddock/commentbox/internal/logging"
)

var (
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cbox",
		Short:         "Read and post comments on a comment store",
		Long:          "A tool to read and post comment threads, render the embeddable comment widget, and host it for preview.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(flagVerbose)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json|html)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log requests and discarded errors to stderr")

	root.AddCommand(
		newCommentsCmd(),
		newPostCmd(),
		newRenderCmd(),
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the comment store.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getCookie())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// isHTML returns true if the --format flag is set to html.
func isHTML() bool {
	return flagFormat == "html"
}
