// Package upload moves picked media to object storage through signed URLs.
//
// One asset goes through three steps, each with its own error type from
// internal/client/client:
//
//  1. a Broker issues a single-use Ticket (TicketError),
//  2. a Resolver turns the asset's source URI into a local path
//     (UnresolvableSourceError),
//  3. a Transferer PUTs the bytes to the ticket's write URL (TransferError).
//
// Engine.UploadMany runs assets one after another, records failures without
// stopping, and reports progress once per asset.
package upload
