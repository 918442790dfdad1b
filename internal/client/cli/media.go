package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/cofit/cofitcli/internal/client/upload"
)

// notifyInterrupt is a test seam for signal.NotifyContext.
var notifyInterrupt = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// Import adds each path to the media library and prints its handle.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: import <path>...")
		return nil
	}
	var firstErr error
	for _, p := range args {
		rec, err := a.library.Import(ctx, p)
		if err != nil {
			a.printf("%s: %v\n", p, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		a.printf("%s  %s\n", rec.Handle, rec.FileName)
	}
	return firstErr
}

func (a *App) Library(ctx context.Context, _ []string) error {
	recs, err := a.library.List(ctx)
	if err != nil {
		a.println("Could not read library:", err)
		return err
	}
	if len(recs) == 0 {
		a.println("Library is empty")
		return nil
	}
	for _, r := range recs {
		a.printf("%s  %-24s %-12s %8d  %s\n", r.Handle, r.FileName, r.MimeType, r.FileSize, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: remove <handle>")
		return nil
	}
	if err := a.library.Remove(ctx, args[0]); err != nil {
		a.println("Could not remove:", err)
		return err
	}
	return nil
}

// Upload uploads library handles or file paths one by one. Ctrl-C stops the
// batch after the current file.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Usage: upload <handle|path>... (at most %d)\n", a.maxAssets)
		return nil
	}

	assets, err := a.library.Pick(ctx, a.maxAssets, args...)
	if err != nil {
		a.println("Cannot upload:", err)
		return err
	}

	ctx, stop := notifyInterrupt(ctx)
	defer stop()

	batch := a.uploader.UploadMany(ctx, assets, func(completed, total int) {
		a.printf("uploaded %d/%d\n", completed, total)
	})

	for _, u := range batch.URLs {
		a.println(u)
	}
	for _, f := range batch.Failures {
		a.printf("failed: %s: %v\n", f.Asset.SourceURI, f.Err)
	}

	switch batch.Outcome() {
	case upload.OutcomeAll:
		a.println("All uploads succeeded")
	case upload.OutcomePartial:
		a.println(batch.Summary())
	default:
		a.println("All uploads failed")
	}
	if batch.Cancelled {
		a.printf("Cancelled; %d not attempted\n", batch.Total-batch.Completed)
	}
	return nil
}
