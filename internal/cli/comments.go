package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/commentbox/internal/client"
	"github.com/evcraddock/commentbox/internal/comment"
)

func newCommentsCmd() *cobra.Command {
	var (
		hostname string
		targets  []string
	)

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List the comments of one or more threads",
		Long: "List the comments the store holds for a thread, in display order. " +
			"With several --target flags the threads are fetched concurrently and printed as they arrive.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComments(cmd.Context(), cmd.OutOrStdout(), newAPIClient(), hostname, targets)
		},
	}

	cmd.Flags().StringVar(&hostname, "hostname", "", "embedding site hostname")
	cmd.Flags().StringArrayVar(&targets, "target", nil, "thread identifier (repeatable)")
	_ = cmd.MarkFlagRequired("hostname")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// fetchThreads loads every target's thread concurrently and hands each to
// emit as soon as it arrives. emit calls are serialized. The first failure
// cancels the remaining requests.
func fetchThreads(ctx context.Context, c *client.Client, hostname string, targets []string, emit func(thread) error) error {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, target := range targets {
		g.Go(func() error {
			comments, err := c.ListComments(ctx, hostname, target)
			if err != nil {
				return fmt.Errorf("listing %s: %w", target, err)
			}
			mu.Lock()
			defer mu.Unlock()
			return emit(thread{Target: target, Comments: comments})
		})
	}

	return g.Wait()
}

func runComments(ctx context.Context, w io.Writer, c *client.Client, hostname string, targets []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var threads []thread
	err := fetchThreads(ctx, c, hostname, targets, func(t thread) error {
		if isJSON() {
			threads = append(threads, t)
			return nil
		}
		return printThread(w, t, len(targets) > 1)
	})
	if err != nil {
		return err
	}

	if !isJSON() {
		return nil
	}
	if len(targets) == 1 && len(threads) == 1 {
		return printJSON(w, nonNil(threads[0].Comments))
	}
	for i := range threads {
		threads[i].Comments = nonNil(threads[i].Comments)
	}
	return printJSON(w, threads)
}

func printThread(w io.Writer, t thread, header bool) error {
	if isHTML() {
		return printHTML(w, t.Comments)
	}
	if header {
		fmt.Fprintf(w, "%s\n\n", newStyles(w).header.Render("Comments for "+t.Target+":"))
	}
	printCommentList(w, t.Comments)
	return nil
}

func nonNil(comments []*comment.Comment) []*comment.Comment {
	if comments == nil {
		return []*comment.Comment{}
	}
	return comments
}
