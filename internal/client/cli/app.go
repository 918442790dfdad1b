package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/client/upload"
	"github.com/cofit/cofitcli/internal/logging"
)

// SessionStore is what the CLI needs from session.Store.
type SessionStore interface {
	Snapshot() models.Session
	SendVerificationCode(ctx context.Context, phone string) error
	LoginWithPhone(ctx context.Context, phone, code string) (models.Session, error)
	LoginWithEmail(ctx context.Context, email, password string) (models.Session, error)
	Logout(ctx context.Context) error
	SetLoginMethod(m models.LoginMethod)
}

// MediaLibrary is what the CLI needs from upload.Library.
type MediaLibrary interface {
	Import(ctx context.Context, path string) (*models.MediaRecord, error)
	List(ctx context.Context) ([]*models.MediaRecord, error)
	Remove(ctx context.Context, handle string) error
	Pick(ctx context.Context, max int, refs ...string) ([]models.Asset, error)
}

type Uploader interface {
	UploadMany(ctx context.Context, assets []models.Asset, onProgress upload.ProgressFunc) *upload.Batch
}

// RawAPI fetches arbitrary authenticated paths.
type RawAPI interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

type Deps struct {
	Session  SessionStore
	Library  MediaLibrary
	Uploader Uploader
	API      RawAPI
	Logger   logging.Logger
	// MaxAssets caps one upload; zero means upload.DefaultMaxAssets.
	MaxAssets int
}

type App struct {
	session   SessionStore
	library   MediaLibrary
	uploader  Uploader
	api       RawAPI
	logger    logging.Logger
	maxAssets int

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	max := d.MaxAssets
	if max <= 0 {
		max = upload.DefaultMaxAssets
	}
	return &App{
		session:   d.Session,
		library:   d.Library,
		uploader:  d.Uploader,
		api:       d.API,
		logger:    d.Logger,
		maxAssets: max,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

// status is shown in the prompt: "(name)" when logged in, "(phone)" or
// "(email)" for the selected login form otherwise.
func (a *App) status() string {
	s := a.session.Snapshot()
	if s.IsAuthenticated() {
		name := s.User.Name
		if name == "" {
			name = s.User.ID
		}
		return fmt.Sprintf("(%s)", name)
	}
	if s.LoginMethod != "" {
		return fmt.Sprintf("(%s)", s.LoginMethod)
	}
	return ""
}

// Run starts the REPL and blocks until the user quits or input ends.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to Cofit CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// Get prints the JSON returned for an authenticated API path.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: get <path>")
		return nil
	}
	raw, err := a.api.Get(ctx, args[0])
	if err != nil {
		a.println("Request failed:", err)
		return err
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		a.println(string(raw))
		return nil
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	a.println(string(b))
	return nil
}
