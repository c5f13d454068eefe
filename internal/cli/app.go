package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/api"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/credential"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/db"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/editor"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/gate"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/identity"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/lines"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/logger"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/notify"
	"github.com/abira1/Julian-D-Rozario-sub001/internal/session"
)

var cliLogger zerolog.Logger = zerolog.Nop()

// App is everything a command needs, wired from one Config.
type App struct {
	Config *config.Config
	In     *lines.Reader
	Out    io.Writer

	Credentials credential.Store
	Sessions    *session.Manager
	API         *api.Client
	Gate        *gate.Gate
	Journal     editor.Journal
	Events      *notify.Hub[editor.Event]

	database    *db.SQLite
	revalidator *session.Revalidator
}

// setLoggers hands l to every package that logs.
func setLoggers(l zerolog.Logger) {
	cliLogger = l
	config.SetLogger(l)
	credential.SetLogger(l)
	db.SetLogger(l)
	session.SetLogger(l)
	gate.SetLogger(l)
	editor.SetLogger(l)
	api.SetLogger(l)
}

// NewApp opens local state and starts restoring the stored session in the background.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	a := &App{
		Config: cfg,
		In:     lines.NewReader(in),
		Out:    out,
		Events: notify.NewHub[editor.Event](),
	}

	if cfg.Auth.Store == config.StoreSQLite || cfg.Editor.Journal == config.StoreSQLite {
		path, err := cfg.DatabasePath()
		if err != nil {
			return nil, err
		}
		a.database = db.NewSQLite(path)
		if err := a.database.InitDb(); err != nil {
			return nil, fmt.Errorf("failed to open local state: %w", err)
		}
	}

	creds, err := a.credentialStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Credentials = creds

	ua := api.WithUserAgent(config.AppName + "/" + version)
	identityAPI := api.NewClient(cfg.Server.BaseURL, &http.Client{Timeout: cfg.Server.Timeout}, ua)

	a.Sessions = session.NewManager(creds, identityAPI, a.identitySource(identityAPI, in),
		session.WithVerifyTimeout(cfg.Auth.VerifyTimeout),
		session.WithHTTPTimeout(cfg.Server.Timeout),
	)
	a.API = api.NewClient(cfg.Server.BaseURL, a.Sessions.Client(), ua, api.WithCategoriesTTL(cfg.Cache.CategoriesTTL))
	a.Gate = gate.New(a.Sessions, gate.NewTerminalPrompter(a.In, out))

	switch cfg.Editor.Journal {
	case config.StoreSQLite:
		a.Journal = editor.NewDBJournal(a.database)
	case config.StoreMemory:
		a.Journal = editor.NewMemoryJournal()
	default:
		a.Journal = editor.NopJournal{}
	}

	a.Sessions.Start(ctx)

	if cfg.Auth.Revalidate != "" {
		r, err := session.NewRevalidator(a.Sessions, cfg.Auth.Revalidate)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf(config.ErrInvalidValueFmt, "auth.revalidate", cfg.Auth.Revalidate)
		}
		r.Start()
		a.revalidator = r
	}

	return a, nil
}

func (a *App) credentialStore() (credential.Store, error) {
	switch a.Config.Auth.Store {
	case config.StoreSQLite:
		return credential.NewDBStore(a.database, a.Config.Auth.StorageKey), nil
	case config.StoreMemory:
		return credential.NewMemoryStore(), nil
	default:
		path, err := a.Config.CredentialsPath()
		if err != nil {
			return nil, err
		}
		return credential.NewFileStore(path, a.Config.Auth.StorageKey), nil
	}
}

func (a *App) identitySource(challenger identity.Challenger, in io.Reader) identity.Source {
	switch a.Config.Auth.Provider {
	case config.ProviderEd25519:
		key, err := identity.LoadPrivateKey(a.Config.Auth.Ed25519.PrivateKeyPath)
		if err != nil {
			cliLogger.Warn().Err(err).Str("path", a.Config.Auth.Ed25519.PrivateKeyPath).Msg("Ed25519 key not loaded")
			return unavailableSource{name: config.ProviderEd25519, err: fmt.Errorf("failed to load private key: %w", err)}
		}
		return identity.NewEd25519Source(key, challenger)
	case config.ProviderToken:
		return identity.NewTokenSource(a.secretReader(in))
	default:
		return identity.NewGoogleSource(a.Config.Auth.Google, func(url, code string) {
			fmt.Fprintln(a.Out, promptStyle.Render("To sign in, open "+url))
			fmt.Fprintln(a.Out, promptStyle.Render("and enter the code "+code))
		})
	}
}

// secretReader hides input on a terminal. Otherwise it reads from the same
// line reader as the editor so piped input is not split between two buffers.
func (a *App) secretReader(in io.Reader) identity.SecretReader {
	f, _ := in.(*os.File)
	return identity.TerminalSecretReader(f, a.In, a.Out)
}

// unavailableSource fails every login with a configuration error.
type unavailableSource struct {
	name string
	err  error
}

func (s unavailableSource) Name() string { return s.name }

func (s unavailableSource) Credential(context.Context) (identity.Credential, error) {
	return identity.Credential{}, s.err
}

func (a *App) Close() {
	if a.revalidator != nil {
		a.revalidator.Stop()
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			cliLogger.Warn().Err(err).Msg("Failed to close local state")
		}
	}
}

// waitReady blocks until the stored session has been checked.
func (a *App) waitReady(ctx context.Context) error {
	select {
	case <-a.Sessions.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Protect runs action behind the sign-in gate.
func (a *App) Protect(ctx context.Context, name string, action session.Action) error {
	if err := a.waitReady(ctx); err != nil {
		return err
	}
	return a.Gate.Run(ctx, action, gate.Named(name))
}

// checkEditor rejects sessions that may not edit posts.
func (a *App) checkEditor(ctx context.Context) error {
	s, ok := session.SessionFromContext(ctx)
	if !ok {
		return errs.ErrAuthExpired
	}
	if a.Config.Auth.RequireAdmin && !s.User.IsAdmin {
		return errNotAdmin
	}
	return nil
}

func (a *App) editorOptions() editor.Options {
	opts := editor.OptionsFromConfig(a.Config.Editor)
	opts.Journal = a.Journal
	opts.Events = a.Events
	return opts
}

// withApp loads the configuration, builds the App and runs fn with it.
func withApp(ctx context.Context, in io.Reader, out io.Writer, fn func(ctx context.Context, a *App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(l)
	ctx = l.WithContext(ctx)

	a, err := NewApp(ctx, cfg, in, out)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
