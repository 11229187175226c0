package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evcraddock/commentbox/internal/comment"
	"github.com/evcraddock/commentbox/internal/logging"
	"github.com/evcraddock/commentbox/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		port     int
		origins  []string
		assets   string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the embed page",
		Long: "Start an HTTP server hosting the comment widget's embed page, with /comments proxied to the store. " +
			"With --assets the page loads the wasm widget in the browser; otherwise threads are rendered on the server. " +
			"Changes to the name and image in the config file apply without a restart.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, web.Options{
				Identity:       getIdentity(),
				Provider:       provider,
				AllowedOrigins: origins,
				AssetsDir:      assets,
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 8081, "port to listen on")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "origin allowed to call /comments cross-origin (repeatable)")
	cmd.Flags().StringVar(&assets, "assets", "", "directory holding wasm_exec.js and widget.wasm")
	cmd.Flags().StringVar(&provider, "provider", "github", "store sign-in provider")

	return cmd
}

func runServe(ctx context.Context, port int, opts web.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	srv, err := web.NewServer(newAPIClient(), opts)
	if err != nil {
		return err
	}

	err = watchConfig(ctx, func(cfg CLIConfig) {
		srv.SetIdentity(comment.Identity{Name: cfg.Name, Image: cfg.Image})
	})
	if err != nil {
		slog.Warn("config changes will need a restart", "error", err)
	}

	return srv.ListenAndServe(port, logging.RequestLogger(srv))
}
