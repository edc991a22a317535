package app

// App wires the NHL client, logo pipeline, chart renderer and publishers
// for one invocation of the CLI. Each step can run on its own:
// DownloadLogos -> ConvertLogos -> Chart, or all of them through Run.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"goalie-chart/internal/clients_api/nhl"
	"goalie-chart/internal/domain/goalies"
	"goalie-chart/internal/domain/teams"
	"goalie-chart/internal/features/charts"
	"goalie-chart/internal/features/logos"
	"goalie-chart/internal/features/publish"
	"goalie-chart/internal/features/report"
	"goalie-chart/internal/infra/config"
	"goalie-chart/internal/infra/fs"
	logging "goalie-chart/internal/infra/log"
	"goalie-chart/internal/infra/metrics"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrNoData - the stats API answered without any usable goalie rows
var ErrNoData = errors.New("no data was found, please check if the API is accessible")

type App struct {
	cfg     *config.Config
	fs      afero.Fs
	out     io.Writer
	client  *nhl.Client
	metrics *metrics.Recorder
	runID   string

	svgStore *fs.LogoStore
	jpgStore *fs.LogoStore

	httpClient       *http.Client
	telegramEndpoint string
}

type Option func(*App)

// WithFs replaces the OS filesystem, e.g. with afero.NewMemMapFs in tests.
func WithFs(fsys afero.Fs) Option {
	return func(a *App) { a.fs = fsys }
}

// WithOutput redirects the console report.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// WithTelegramEndpoint points the bot at another Bot API server ("https://host/bot%s/%s").
func WithTelegramEndpoint(endpoint string) Option {
	return func(a *App) { a.telegramEndpoint = endpoint }
}

func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		out:     os.Stdout,
		metrics: metrics.NewRecorder(),
		runID:   logging.GenerateRequestID(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.client = nhl.NewClient(nhl.Config{
		StatsURL:    cfg.NHL.StatsURL,
		LogoBaseURL: cfg.NHL.LogoBaseURL,
		Timeout:     time.Duration(cfg.NHL.RequestTimeout) * time.Second,
		MaxRetries:  cfg.NHL.MaxRetries,
		RateLimit:   cfg.NHL.RateLimit,
		HTTPClient:  a.httpClient,
		Metrics:     a.metrics,
	})
	a.svgStore = fs.NewLogoStore(a.fs, cfg.Logos.SVGDir, "svg")
	a.jpgStore = fs.NewLogoStore(a.fs, cfg.Logos.JPGDir, "jpg")
	return a
}

// Metrics exposes the run's recorder.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

// DownloadLogos fetches every team's SVG. Per-team failures are logged and
// do not fail the step.
func (a *App) DownloadLogos(ctx context.Context) error {
	d := logos.NewDownloader(a.client, a.svgStore, a.cfg.Logos.Concurrency, a.metrics)
	_, err := d.DownloadAll(ctx, teams.Codes)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	a.logBatch("Some logos failed to download", err)
	return nil
}

// ConvertLogos rasterizes the downloaded SVGs to JPG.
func (a *App) ConvertLogos(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := logos.NewConverter(a.svgStore, a.jpgStore, a.cfg.Logos.Size, a.metrics)
	_, err := c.ConvertAll(teams.Codes)
	a.logBatch("Some logos failed to convert", err)
	return nil
}

func (a *App) logBatch(msg string, err error) {
	if err == nil {
		return
	}
	errs := multierr.Errors(err)
	logging.LogWarn(msg, zap.String("run_id", a.runID), zap.Int("failed", len(errs)), zap.Errors("errors", errs))
}

// FetchRecords downloads the goalie summary, snapshots it and maps it to records.
func (a *App) FetchRecords(ctx context.Context) ([]goalies.Record, error) {
	logging.LogInfo("Fetching data from NHL API", zap.String("run_id", a.runID), zap.String("season", a.cfg.NHL.Season))

	q := nhl.DefaultGoalieQuery()
	q.Season = a.cfg.NHL.Season
	q.GameType = a.cfg.NHL.GameType
	q.MinGames = a.cfg.NHL.MinGames
	q.Limit = a.cfg.NHL.Limit

	summary, err := a.client.GoalieSummary(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := fs.SaveJSON(a.fs, a.cfg.App.DataDir, fs.GoalieSummaryFile, summary); err != nil {
		logging.LogWarn("Failed to save goalie summary snapshot", zap.Error(err))
	}

	records := summary.Records()
	a.metrics.SetGoaliesFetched(len(records))
	if len(records) == 0 {
		return nil, ErrNoData
	}
	logging.LogSuccess("Retrieved goalie data", zap.Int("goalies", len(records)), zap.Int("total", summary.Total))
	return records, nil
}

// Chart fetches the stats and writes the SVG, the optional PNG preview,
// the console table and the Telegram post.
func (a *App) Chart(ctx context.Context) error {
	records, err := a.FetchRecords(ctx)
	if err != nil {
		return err
	}

	renderer := charts.NewRenderer(logos.NewRecolorer(a.jpgStore), charts.Options{
		Top:      a.cfg.Chart.Top,
		Season:   a.cfg.NHL.Season,
		MinGames: a.cfg.NHL.MinGames,
	}, a.metrics)

	output := a.cfg.Chart.Output
	if output == "" {
		output = charts.DefaultOutput
	}
	layout, err := renderer.RenderFile(a.fs, output, records)
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	selected := make([]goalies.Record, 0, len(layout.Bars))
	for _, bar := range layout.Bars {
		selected = append(selected, bar.Record)
	}
	if err := report.WriteTable(a.out, fmt.Sprintf("Top %d Goalies by Save Percentage", len(selected)), selected); err != nil {
		logging.LogWarn("Failed to print table", zap.Error(err))
	}

	if !a.cfg.Chart.Preview && !a.cfg.Telegram.Enabled() {
		return nil
	}
	preview := charts.PreviewPath(output)
	if err := charts.WritePNGFile(a.fs, preview, layout); err != nil {
		return err
	}
	if a.cfg.Telegram.Enabled() {
		return a.publish(preview, publish.Caption(layout.Title, layout.Subtitle, selected))
	}
	logging.LogInfo("Telegram not configured, skipping publish")
	return nil
}

func (a *App) publish(path, caption string) error {
	p, err := publish.NewTelegram(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.telegramEndpoint, a.fs)
	if err != nil {
		return err
	}
	return p.SendChart(path, caption)
}

// Run executes every step in order.
func (a *App) Run(ctx context.Context) error {
	if err := a.DownloadLogos(ctx); err != nil {
		return err
	}
	if err := a.ConvertLogos(ctx); err != nil {
		return err
	}
	return a.Chart(ctx)
}

// Close flushes the metrics textfile when one is configured.
func (a *App) Close() error {
	return a.metrics.WriteTextfile(a.cfg.App.MetricsFile)
}
