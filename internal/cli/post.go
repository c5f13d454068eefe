package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/editor"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/markdown"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/model"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/session"
)

func init() {
	rootCmd.AddCommand(postCmd)
	postCmd.AddCommand(postNewCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postImportCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postJournalCmd)
	postCmd.AddCommand(postRestoreCmd)

	postJournalCmd.Flags().String("drop", "", "remove the journal entry with this key")
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Write and publish posts",
}

var postNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			if err := a.Protect(ctx, "edit posts", a.checkEditor); err != nil {
				printNotice(a.Out, err)
				return err
			}
			return a.edit(ctx, editor.New(a.API, a.editorOptions()))
		})
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit an existing post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := model.ContentID(args[0])
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			var ed *editor.Editor
			err := a.Protect(ctx, "edit posts", func(ctx context.Context) error {
				if err := a.checkEditor(ctx); err != nil {
					return err
				}
				var err error
				ed, err = editor.Open(ctx, a.API, id, a.editorOptions())
				return err
			})
			if err != nil {
				printNotice(a.Out, err)
				return err
			}

			if entry, err := a.Journal.Load(editor.JournalKey(id, "")); err != nil {
				cliLogger.Warn().Err(err).Msg("Failed to read draft journal")
			} else if entry != nil && !entry.Content.SameFields(ed.Draft().Fields) {
				a.offerRestore(ctx, ed, entry)
			}
			return a.edit(ctx, ed)
		})
	},
}

var postImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Start a new draft from a markdown file",
	Long: `Start a new draft from a markdown file.

A leading %%% block of TOML sets the title, excerpt, category, tags and image;
keywords are added to the tags. The rest of the file becomes the body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := markdown.ImportFile(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			if err := a.Protect(ctx, "edit posts", a.checkEditor); err != nil {
				printNotice(a.Out, err)
				return err
			}
			ed := editor.New(a.API, a.editorOptions())
			ed.Restore(c)
			printOK(a.Out, "Imported %q", c.Title)
			return a.edit(ctx, ed)
		})
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := model.ContentID(args[0])
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			opts := a.editorOptions()
			opts.Autosave = false
			ed := editor.Load(a.API, model.Content{ID: id}, opts)
			defer ed.Close()

			err := a.Protect(ctx, "delete this post", func(ctx context.Context) error {
				if err := a.checkEditor(ctx); err != nil {
					return err
				}
				return ed.Delete(ctx)
			})
			if err != nil {
				printNotice(a.Out, err)
				return err
			}
			printOK(a.Out, "Deleted post %s", id)
			return nil
		})
	},
}

var postJournalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List drafts with edits that never reached the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		drop, _ := cmd.Flags().GetString("drop")
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			if drop != "" {
				if err := a.Journal.Delete(drop); err != nil {
					return err
				}
				printOK(a.Out, "Dropped %s", drop)
				return nil
			}

			entries, err := a.Journal.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.Out, dimStyle.Render("No unsaved drafts"))
				return nil
			}
			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tTITLE\tUPDATED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.Content.Title, e.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		})
	},
}

var postRestoreCmd = &cobra.Command{
	Use:   "restore KEY",
	Short: "Reopen a draft from the local journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			entry, err := a.Journal.Load(key)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("no journal entry %q (see: quill post journal)", key)
			}

			var ed *editor.Editor
			err = a.Protect(ctx, "edit posts", func(ctx context.Context) error {
				if err := a.checkEditor(ctx); err != nil {
					return err
				}
				if entry.ContentID == "" {
					ed = editor.New(a.API, a.editorOptions())
					return nil
				}
				var err error
				ed, err = editor.Open(ctx, a.API, entry.ContentID, a.editorOptions())
				return err
			})
			if err != nil {
				printNotice(a.Out, err)
				return err
			}

			ed.Restore(entry.Content)
			if err := a.Journal.Delete(key); err != nil {
				cliLogger.Warn().Err(err).Str("key", key).Msg("Failed to drop restored journal entry")
			}
			printOK(a.Out, "Restored edits from %s", entry.UpdatedAt.Local().Format(time.DateTime))
			return a.edit(ctx, ed)
		})
	},
}

// edit runs the line editor on ed. Manual operations go through the sign-in gate.
func (a *App) edit(ctx context.Context, ed *editor.Editor) error {
	run := func(ctx context.Context, name string, action session.Action) error {
		return a.Protect(ctx, name, action)
	}
	return newEditSession(ed, a.In, a.Out, run).Run(ctx)
}

func (a *App) offerRestore(ctx context.Context, ed *editor.Editor, entry *editor.JournalEntry) {
	fmt.Fprint(a.Out, promptStyle.Render(fmt.Sprintf("Restore unsaved edits from %s? [Y/n] ", entry.UpdatedAt.Local().Format(time.DateTime))))
	line, err := a.In.ReadLine(ctx)
	if err != nil && line == "" {
		fmt.Fprintln(a.Out)
		return
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		ed.Restore(entry.Content)
		printOK(a.Out, "Restored")
	}
}
