package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/commentbox/internal/client"
	"github.com/evcraddock/commentbox/internal/comment"
)

func newPostCmd() *cobra.Command {
	var (
		hostname string
		target   string
		params   map[string]string
	)

	cmd := &cobra.Command{
		Use:   `post "text"`,
		Short: "Post a comment to a thread",
		Long: "Post a comment to a thread. Extra --param pairs are sent with the comment " +
			"the way the widget forwards its page's query parameters.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("comment text is required")
			}

			merged := make(map[string]string, len(params)+2)
			for k, v := range params {
				merged[k] = v
			}
			merged["hostname"] = hostname
			merged["target"] = target

			return runPost(cmd.Context(), cmd.OutOrStdout(), newAPIClient(), comment.NewPayload(text, merged), getIdentity())
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "embedding site hostname")
	cmd.Flags().StringVar(&target, "target", "", "thread identifier")
	cmd.Flags().StringToStringVar(&params, "param", nil, "extra key=value sent with the comment (repeatable)")
	_ = cmd.MarkFlagRequired("hostname")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runPost(ctx context.Context, w io.Writer, c *client.Client, payload comment.Payload, id comment.Identity) error {
	if ctx == nil {
		ctx = context.Background()
	}

	created, err := c.PostComment(ctx, payload)
	if err != nil {
		return err
	}
	if id.Name != "" {
		created = created.WithIdentity(id)
	}

	switch {
	case isJSON():
		return printJSON(w, created)
	case isHTML():
		return printHTML(w, []*comment.Comment{created})
	}
	printCommentSingle(w, created)
	return nil
}
