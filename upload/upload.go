// Package upload submits bulk import files and watches the affected list
// until the server-side job's rows show up.
package upload

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/rs/zerolog/log"
)

// Multipart field names the backend expects.
const (
	SpreadsheetField = "file"
	ImagesField      = "images"
)

type File = httpclient.File

// Spreadsheet is the required data part of a bulk upload.
func Spreadsheet(name string, r io.Reader) File {
	return File{FieldName: SpreadsheetField, FileName: name, Content: r}
}

// Images is the optional zip of product images. A nil reader omits the part.
func Images(name string, r io.Reader) File {
	return File{FieldName: ImagesField, FileName: name, Content: r}
}

// Job is the server's acknowledgement of an accepted upload. The import
// itself runs asynchronously.
type Job struct {
	Message  string `json:"message"`
	Accepted int    `json:"accepted"`
}

// Counter refetches the affected list and reports its current row count.
type Counter func(ctx context.Context) (int, error)

// Sender performs the upload request.
type Sender func(ctx context.Context) (Job, error)

// Watch polls count until it exceeds baseline or cfg.Deadline passes.
func Watch(ctx context.Context, cfg poller.Config, baseline int, count Counter) poller.Result {
	var latest atomic.Int64
	latest.Store(int64(baseline))
	return poller.Poll(ctx, cfg, refetchInto(count, &latest), grown(baseline, &latest))
}

// Submit records the list's row count, sends the upload, and on acceptance
// starts a background watch of the list. The returned handle is nil when the
// upload failed.
func Submit(ctx context.Context, cfg poller.Config, send Sender, count Counter) (Job, *poller.Handle, error) {
	baseline, err := count(ctx)
	if err != nil {
		log.Debug().Err(err).Str("poll", cfg.Name).Msg("baseline count unavailable, watching until deadline")
		baseline = -1
	}

	job, err := send(ctx)
	if err != nil {
		return Job{}, nil, fmt.Errorf("[upload.Submit] %w", err)
	}
	log.Info().Str("resource", cfg.Name).Str("message", job.Message).Int("accepted", job.Accepted).Msg("upload accepted")

	var latest atomic.Int64
	latest.Store(int64(baseline))
	var done func() bool
	if baseline >= 0 {
		done = grown(baseline, &latest)
	}
	h := poller.Start(context.WithoutCancel(ctx), cfg, refetchInto(count, &latest), done)
	return job, h, nil
}

func refetchInto(count Counter, latest *atomic.Int64) func(context.Context) error {
	return func(ctx context.Context) error {
		n, err := count(ctx)
		if err != nil {
			return err
		}
		latest.Store(int64(n))
		return nil
	}
}

func grown(baseline int, latest *atomic.Int64) func() bool {
	return func() bool { return latest.Load() > int64(baseline) }
}
