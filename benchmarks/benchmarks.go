// Package benchmarks manages the hardware benchmark table the recommender
// scores components with.
package benchmarks

import (
	"context"
	"io"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/upload"
)

const ResourceName = "benchmarks"

// Benchmark is one scored component row.
type Benchmark struct {
	ID        int     `json:"id,omitempty"`
	Component string  `json:"component" validate:"required"` // cpu, gpu, ram, storage
	Name      string  `json:"name" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
	Source    string  `json:"source,omitempty"`
}

type Service struct {
	*resource.Repository[Benchmark]
}

func NewService(client *httpclient.Client, queries *cache.QueryClient, opts ...resource.Option) *Service {
	return &Service{resource.NewRepository[Benchmark](ResourceName, client, queries, opts...)}
}

// UploadSpreadsheet sends a benchmark spreadsheet and watches the list until
// the imported rows appear.
func (s *Service) UploadSpreadsheet(ctx context.Context, name string, r io.Reader) (upload.Job, *poller.Handle, error) {
	return s.UploadAndWatch(ctx, nil, upload.Spreadsheet(name, r))
}
