package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/commentbox/internal/query"
	"github.com/evcraddock/commentbox/internal/web"
)

func newRenderCmd() *cobra.Command {
	var (
		hostname string
		target   string
		base     string
		params   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the embed page for a thread",
		Long: "Run the comment widget against the store and print the resulting embed page, " +
			"as the preview host would serve it at --base.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := pageURL(base, hostname, target, params)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), location)
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "embedding site hostname")
	cmd.Flags().StringVar(&target, "target", "", "thread identifier")
	cmd.Flags().StringVar(&base, "base", "http://localhost:8081/", "URL the page is served from")
	cmd.Flags().StringToStringVar(&params, "param", nil, "extra query parameter key=value (repeatable)")
	_ = cmd.MarkFlagRequired("hostname")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// pageURL builds the embed page location, e.g.
// http://localhost:8081/?hostname=example.com&target=t1.
func pageURL(base, hostname, target string, extra map[string]string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	params := query.Params{}
	for k, v := range extra {
		params[k] = v
	}
	params["hostname"] = hostname
	params["target"] = target
	u.RawQuery = params.Encode()
	return u, nil
}

func runRender(ctx context.Context, w io.Writer, location *url.URL) error {
	if ctx == nil {
		ctx = context.Background()
	}

	srv, err := web.NewServer(newAPIClient(), web.Options{Identity: getIdentity()})
	if err != nil {
		return err
	}
	return srv.RenderPage(ctx, w, location, getCookie())
}
