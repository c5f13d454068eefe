package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/editor"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/lines"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/session"
)

const editHelp = `Commands:
  :title TEXT          set the title
  :excerpt TEXT        set the excerpt
  :body [TEXT]         set the body; without TEXT read lines until a single "."
  :category TEXT       set the category
  :tag +a -b c         add or remove tags (no sign adds)
  :image URL           set the featured image
  :seo FIELD TEXT      set SEO title, description or keywords
  :featured on|off     feature the post
  :sticky on|off       pin the post
  :readtime [TEXT]     pin the read time; without TEXT compute it from the body
  :autosave on|off     toggle background saving
  :save                save as draft
  :publish             publish now
  :schedule RFC3339    publish at a later time
  :unpublish           take a published post back to draft
  :archive             archive the post
  :delete              delete the post
  :status              show the draft
  :quit                leave the editor`

// runner runs a manual operation, signing in first if needed.
type runner func(ctx context.Context, name string, action session.Action) error

// editSession is the line-oriented editor around one editor.Editor.
type editSession struct {
	ed  *editor.Editor
	in  *lines.Reader
	out io.Writer
	run runner
}

func newEditSession(ed *editor.Editor, in *lines.Reader, out io.Writer, run runner) *editSession {
	return &editSession{ed: ed, in: in, out: out, run: run}
}

var errQuit = errors.New("quit")

// Run reads commands until :quit or end of input. Leaving with unsaved edits
// keeps them in the local journal.
func (s *editSession) Run(ctx context.Context) error {
	events := s.ed.Subscribe(32)
	defer s.ed.Unsubscribe(events)
	go logEvents(events.Msg)

	fmt.Fprintln(s.out, dimStyle.Render("Type :help for commands."))
	for {
		fmt.Fprint(s.out, promptStyle.Render(s.prompt()))
		line, err := s.in.ReadLine(ctx)
		if err != nil && err == ctx.Err() {
			fmt.Fprintln(s.out)
			return s.quit()
		}
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return s.quit()
			}
			return err
		}

		if err := s.exec(ctx, strings.TrimRight(line, "\r\n")); err != nil {
			if errors.Is(err, errQuit) {
				return s.quit()
			}
			printNotice(s.out, err)
		}
		if ctx.Err() != nil {
			return s.quit()
		}
	}
}

func logEvents(events <-chan editor.Event) {
	for ev := range events {
		l := cliLogger.Debug()
		if ev.Err != nil {
			l = l.Err(ev.Err)
		}
		l.Str("event", ev.Kind.String()).Str("op", ev.Op).Str("state", ev.State.String()).Bool("dirty", ev.Dirty).Msg("Editor event")
	}
}

func (s *editSession) quit() error {
	d := s.ed.Draft()
	if s.ed.Close() {
		fmt.Fprintln(s.out, noticeStyle.Render("Unsaved edits were kept locally; restore them with: quill post restore "+editor.JournalKey(d.ID, d.Key)))
	}
	return nil
}

// prompt shows the lifecycle and save state, e.g. "[draft*] > " while unsaved.
func (s *editSession) prompt() string {
	d := s.ed.Draft()
	mark := ""
	switch {
	case d.Abandoned:
		mark = "!"
	case d.Dirty:
		mark = "*"
	}
	return fmt.Sprintf("[%s%s] > ", d.Persisted, mark)
}

func (s *editSession) exec(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		return fmt.Errorf("commands start with ':' (try :help)")
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "title":
		s.ed.SetTitle(arg)
	case "excerpt":
		s.ed.SetExcerpt(arg)
	case "body":
		if arg != "" {
			s.ed.SetBody(arg)
			return nil
		}
		body, err := s.readBody(ctx)
		if err != nil {
			return err
		}
		s.ed.SetBody(body)
	case "category":
		s.ed.SetCategory(arg)
	case "tag", "tags":
		for _, t := range strings.Fields(arg) {
			switch {
			case strings.HasPrefix(t, "-"):
				s.ed.RemoveTag(strings.TrimPrefix(t, "-"))
			default:
				s.ed.AddTag(strings.TrimPrefix(t, "+"))
			}
		}
	case "image":
		s.ed.SetFeaturedImage(arg)
	case "seo":
		return s.setSEO(arg)
	case "featured", "sticky", "autosave":
		on, err := parseOnOff(arg)
		if err != nil {
			return err
		}
		switch cmd {
		case "featured":
			s.ed.SetFeatured(on)
		case "sticky":
			s.ed.SetSticky(on)
		default:
			s.ed.SetAutosave(on)
		}
	case "readtime":
		s.ed.SetReadTime(arg)
	case "save":
		return s.manual(ctx, "save this draft", "Saved as draft", s.ed.SaveDraft)
	case "publish":
		return s.manual(ctx, "publish", "Published", s.ed.PublishNow)
	case "schedule":
		at, err := time.Parse(time.RFC3339, arg)
		if err != nil {
			return fmt.Errorf("expected an RFC 3339 time such as 2025-07-01T09:00:00Z: %w", err)
		}
		return s.manual(ctx, "schedule", "Scheduled for "+at.Local().Format(time.RFC1123), func(ctx context.Context) error {
			return s.ed.Schedule(ctx, at)
		})
	case "unpublish":
		return s.manual(ctx, "unpublish", "Moved back to draft", s.ed.Unpublish)
	case "archive":
		return s.manual(ctx, "archive", "Archived", s.ed.Archive)
	case "delete":
		if err := s.manual(ctx, "delete", "Deleted", s.ed.Delete); err != nil {
			return err
		}
		return errQuit
	case "status":
		s.printDraft()
	case "help", "h":
		fmt.Fprintln(s.out, editHelp)
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command :%s (try :help)", cmd)
	}
	return nil
}

func (s *editSession) manual(ctx context.Context, name, done string, op session.Action) error {
	if err := s.run(ctx, name, op); err != nil {
		return err
	}
	printOK(s.out, "%s", done)
	return nil
}

// readBody collects lines up to a line holding only ".".
func (s *editSession) readBody(ctx context.Context) (string, error) {
	fmt.Fprintln(s.out, dimStyle.Render(`Enter the body; finish with a line containing only "."`))
	var body []string
	for {
		line, err := s.in.ReadLine(ctx)
		line = strings.TrimRight(line, "\r\n")
		if line == "." {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				body = append(body, line)
				break
			}
			return "", err
		}
		body = append(body, line)
	}
	return strings.Join(body, "\n"), nil
}

func (s *editSession) setSEO(arg string) error {
	field, value, _ := strings.Cut(arg, " ")
	seo := s.ed.Draft().Fields.SEO
	switch strings.ToLower(field) {
	case "title":
		seo.MetaTitle = strings.TrimSpace(value)
	case "description":
		seo.MetaDescription = strings.TrimSpace(value)
	case "keywords":
		seo.MetaKeywords = strings.TrimSpace(value)
	default:
		return fmt.Errorf("seo field must be title, description or keywords")
	}
	s.ed.SetSEO(seo)
	return nil
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}

func (s *editSession) printDraft() {
	d := s.ed.Draft()
	f := d.Fields

	id := string(d.ID)
	if id == "" {
		id = "(not saved yet)"
	}
	saved := "never"
	if !d.LastSavedAt.IsZero() {
		saved = d.LastSavedAt.Local().Format(time.Kitchen)
	}
	dirty := "no"
	if d.Dirty {
		dirty = "yes"
	}

	printField(s.out, "ID", id)
	printField(s.out, "State", string(d.Persisted))
	printField(s.out, "Title", orDash(f.Title))
	printField(s.out, "Excerpt", orDash(f.Excerpt))
	printField(s.out, "Category", orDash(f.Category))
	printField(s.out, "Tags", orDash(strings.Join(f.Tags, ", ")))
	printField(s.out, "Image", orDash(f.FeaturedImage))
	printField(s.out, "Read time", orDash(f.ReadTime))
	printField(s.out, "Body", fmt.Sprintf("%d characters", len([]rune(f.Body))))
	if f.PublishAt != nil {
		printField(s.out, "Publish at", f.PublishAt.Local().Format(time.RFC1123))
	}
	if f.PublishedAt != nil {
		printField(s.out, "Published", f.PublishedAt.Local().Format(time.RFC1123))
	}
	printField(s.out, "Autosave", fmt.Sprintf("%s (%s)", onOff(d.Autosave), d.State))
	printField(s.out, "Unsaved", dirty)
	printField(s.out, "Last saved", saved)
	if d.Abandoned {
		fmt.Fprintln(s.out, noticeStyle.Render("This post no longer exists on the server; autosave is stopped."))
	}
}
