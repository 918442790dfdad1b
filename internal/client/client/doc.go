// Package client contains the client-wide building blocks that do not
// belong to a single feature.
//
// # Overview
//
//  1. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations, exposed as Repositories.
//  2. The error taxonomy shared by the session store, the API client and the
//     upload pipeline.
//
// # Error Handling
//
// Conditions without data are sentinels matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrMissingTicketFields. Failures that
// carry context are typed and matched with errors.As: LoginError,
// SessionExpiredError, TicketError, UnresolvableSourceError, TransferError.
// Each typed error unwraps to its cause.
package client
