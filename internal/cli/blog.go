package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
)

func init() {
	rootCmd.AddCommand(blogCmd)
	blogCmd.AddCommand(blogListCmd)
	blogCmd.AddCommand(blogCategoriesCmd)
	blogCmd.AddCommand(blogLikeCmd)
	blogCmd.AddCommand(blogBookmarkCmd)
	blogCmd.AddCommand(blogCommentCmd)

	blogCommentCmd.Flags().String("reply-to", "", "id of the comment to reply to")
}

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Read the blog and interact with posts",
}

var blogListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List published posts",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			posts, err := a.API.ListBlogs(ctx)
			if err != nil {
				return err
			}
			writeSummaries(a.Out, posts)
			return nil
		})
	},
}

var blogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			categories, err := a.API.Categories(ctx)
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintln(a.Out, c.Name)
			}
			return nil
		})
	},
}

var blogLikeCmd = &cobra.Command{
	Use:   "like ID",
	Short: "Like or unlike a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := model.ContentID(args[0])
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			return a.interact(ctx, "like this post", func(ctx context.Context) error {
				liked, err := a.API.ToggleLike(ctx, id)
				if err != nil {
					return err
				}
				if liked {
					printOK(a.Out, "Liked post %s", id)
				} else {
					printOK(a.Out, "Removed your like from post %s", id)
				}
				return nil
			})
		})
	},
}

var blogBookmarkCmd = &cobra.Command{
	Use:   "bookmark ID",
	Short: "Bookmark or un-bookmark a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := model.ContentID(args[0])
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			return a.interact(ctx, "bookmark this post", func(ctx context.Context) error {
				saved, err := a.API.ToggleBookmark(ctx, id)
				if err != nil {
					return err
				}
				if saved {
					printOK(a.Out, "Bookmarked post %s", id)
				} else {
					printOK(a.Out, "Removed bookmark from post %s", id)
				}
				return nil
			})
		})
	},
}

var blogCommentCmd = &cobra.Command{
	Use:   "comment ID TEXT...",
	Short: "Comment on a post, or reply to a comment with --reply-to",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := model.ContentID(args[0])
		text := strings.Join(args[1:], " ")
		replyTo, _ := cmd.Flags().GetString("reply-to")
		parent, err := model.ParseCommentID(replyTo)
		if err != nil {
			return fmt.Errorf("invalid --reply-to %q: %w", replyTo, err)
		}

		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			return a.interact(ctx, "comment", func(ctx context.Context) error {
				c, err := a.API.AddComment(ctx, id, text, parent)
				if err != nil {
					return err
				}
				if c.ID != "" {
					printOK(a.Out, "Comment %s posted", c.ID)
				} else {
					printOK(a.Out, "Comment posted")
				}
				return nil
			})
		})
	},
}

// interact runs a gated interaction and prints a notice when it fails.
func (a *App) interact(ctx context.Context, name string, action func(ctx context.Context) error) error {
	err := a.Protect(ctx, name, action)
	if err != nil {
		printNotice(a.Out, err)
	}
	return err
}

func writeSummaries(out io.Writer, posts []model.Summary) {
	if len(posts) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No posts"))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPUBLISHED\tREAD TIME")
	for _, p := range posts {
		published := ""
		if p.PublishedAt != nil {
			published = p.PublishedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, published, p.ReadTime)
	}
	_ = w.Flush()
}
