package logos

import (
	"context"
	"sort"
	"time"

	"goalie-chart/internal/infra/fs"
	logging "goalie-chart/internal/infra/log"
	"goalie-chart/internal/infra/metrics"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Fetcher downloads the raw SVG logo for a team.
type Fetcher interface {
	TeamLogo(ctx context.Context, code string) ([]byte, error)
}

// Result is the outcome for one team in a batch.
type Result struct {
	Team  string
	Path  string
	Bytes int
	Err   error
}

// Downloader fetches every logo in parallel and stores it as-is.
type Downloader struct {
	fetcher     Fetcher
	store       *fs.LogoStore
	concurrency int
	metrics     *metrics.Recorder
}

func NewDownloader(fetcher Fetcher, store *fs.LogoStore, concurrency int, rec *metrics.Recorder) *Downloader {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Downloader{fetcher: fetcher, store: store, concurrency: concurrency, metrics: rec}
}

// DownloadAll fetches one logo per code. A failed team never stops the others;
// the returned error combines every per-team failure.
func (d *Downloader) DownloadAll(ctx context.Context, codes []string) ([]Result, error) {
	if err := d.store.Ensure(); err != nil {
		return nil, err
	}
	logging.LogInfo("Starting logo downloads", zap.Int("teams", len(codes)), zap.String("dir", d.store.Dir()))
	startTime := time.Now()

	p := pool.NewWithResults[Result]().WithMaxGoroutines(d.concurrency)
	for _, code := range codes {
		code := code
		p.Go(func() Result {
			return d.download(ctx, code)
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Team < results[j].Team })

	var errs error
	ok := 0
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, r.Err)
			continue
		}
		ok++
	}

	logging.LogSuccess("Logo downloads complete",
		zap.Int("downloaded", ok),
		zap.Int("failed", len(results)-ok),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return results, errs
}

func (d *Downloader) download(ctx context.Context, code string) Result {
	res := Result{Team: code, Path: d.store.Path(code)}

	body, err := d.fetcher.TeamLogo(ctx, code)
	if err == nil {
		err = d.store.Save(code, body)
	}
	d.metrics.RecordLogoDownload(err)
	if err != nil {
		res.Err = err
		logging.LogError("Error downloading logo", zap.String("team", code), zap.Error(err))
		return res
	}

	res.Bytes = len(body)
	logging.LogInfo("Downloaded logo", zap.String("team", code), zap.Int("bytes", res.Bytes))
	return res
}
