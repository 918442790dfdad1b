// Package cli provides the interactive Cofit command-line client.
//
// The App is handed a session store, a media library, an upload engine and
// the raw API client; it owns no state of its own beyond the terminal. The
// REPL is started with App.Run, which blocks until the user exits or input
// ends.
//
// Commands:
//   - method phone|email     choose the login form
//   - code <phone>           text a verification code
//   - login                  log in with the chosen method
//   - login-email <email>    log in by email without changing the method
//   - whoami / logout
//   - import <path>...       add local files to the media library
//   - library / remove <h>   list or drop library entries
//   - upload <ref>...        upload library handles or file paths
//   - get <path>             GET an authenticated API path and print it
package cli
