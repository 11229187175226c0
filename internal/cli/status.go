package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/commentbox/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and session status",
		Long:  "Tests the connection to the store and checks whether the stored session cookie is accepted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	serverURL := getServerURL()
	cookie := getCookie()
	id := getIdentity()

	fmt.Fprintf(out, "Server:  %s\n", serverURL)
	if id.Name != "" {
		fmt.Fprintf(out, "User:    %s\n", id.Name)
	}

	if cookie == "" {
		fmt.Fprintln(out, "Session: not configured")
	} else {
		prefix := cookie
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		fmt.Fprintf(out, "Session: %s…\n", prefix)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := client.New(serverURL, cookie).ListComments(ctx, "", "")
	fmt.Fprintf(out, "Status:  %s\n", describeStatus(err, cookie != ""))

	if cookie == "" {
		fmt.Fprintln(out, "\nRun 'cbox login' to post comments.")
	}
	return nil
}

// describeStatus summarizes the outcome of the probe request.
func describeStatus(err error, hasSession bool) string {
	var statusErr *client.StatusError
	switch {
	case err == nil && hasSession:
		return "✓ connected"
	case err == nil:
		return "✓ connected (anonymous)"
	case errors.Is(err, client.ErrNetwork):
		return fmt.Sprintf("✗ cannot reach server (%v)", err)
	case errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden):
		return "✗ session rejected, run 'cbox login' to sign in again"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("✗ unexpected response (%d)", statusErr.Code)
	case errors.Is(err, client.ErrDecode):
		return "✗ not a comment store (unexpected response body)"
	default:
		return fmt.Sprintf("✗ %v", err)
	}
}
