package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App satisfies it; tests
// provide a recording stub.
type execIface interface {
	isLoggedIn() bool
	Method(ctx context.Context, args []string) error
	SendCode(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	LoginEmail(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Library(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF, on "exit"/"quit", or when ctx is done. Handler
// errors are not fatal; handlers report them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "cofit %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, import, library, remove, upload, get, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: method, code, login, login-email, import, library, remove, upload, exit")
			}
		case "method":
			_ = a.Method(ctx, args)
		case "code":
			_ = a.SendCode(ctx, args)
		case "login":
			_ = a.Login(ctx, args)
		case "login-email":
			_ = a.LoginEmail(ctx, args)
		case "whoami":
			_ = a.WhoAmI(ctx, args)
		case "logout":
			_ = a.Logout(ctx, args)
		case "import":
			_ = a.Import(ctx, args)
		case "library", "ls":
			_ = a.Library(ctx, args)
		case "remove", "rm":
			_ = a.Remove(ctx, args)
		case "upload":
			_ = a.Upload(ctx, args)
		case "get":
			_ = a.Get(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			// EOF after a final unterminated line
			return
		}
	}
}
