package charts

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"goalie-chart/internal/domain/goalies"
	"goalie-chart/internal/domain/teams"
	"goalie-chart/internal/features/logos"
	logging "goalie-chart/internal/infra/log"
	"goalie-chart/internal/infra/metrics"

	svg "github.com/ajstarks/svgo/float"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	DefaultOutput = "nhl_goalie_save_percentages.svg"
	fontFamily    = "Arial"
)

// LogoSource returns a team logo already placed on bg.
type LogoSource interface {
	Logo(code string, bg color.Color) (image.Image, error)
}

type Options struct {
	Top      int
	Season   string // "20242025"
	MinGames int
}

// Renderer turns goalie records into the bar chart. A logo that cannot be
// loaded degrades its bar to an outline; it never fails the render.
type Renderer struct {
	logos   LogoSource
	opts    Options
	metrics *metrics.Recorder
}

func NewRenderer(src LogoSource, opts Options, rec *metrics.Recorder) *Renderer {
	if opts.Top <= 0 {
		opts.Top = TopN
	}
	return &Renderer{logos: src, opts: opts, metrics: rec}
}

// Title for the configured season, e.g. "Top 10 NHL Goalies by Save Percentage (2024-25 Season)".
func (r *Renderer) Title() string {
	return fmt.Sprintf("Top %d NHL Goalies by Save Percentage (%s Season)", r.opts.Top, SeasonLabel(r.opts.Season))
}

func (r *Renderer) Subtitle() string {
	return fmt.Sprintf("Min %d Games", r.opts.MinGames)
}

// SeasonLabel turns "20242025" into "2024-25". Anything else is returned as is.
func SeasonLabel(season string) string {
	if len(season) != 8 {
		return season
	}
	if _, err := strconv.Atoi(season); err != nil {
		return season
	}
	return season[:4] + "-" + season[6:]
}

// Layout computes the geometry and loads every bar's logo.
func (r *Renderer) Layout(records []goalies.Record) (*Layout, error) {
	l, err := ComputeLayout(records, r.opts.Top)
	if err != nil {
		return nil, err
	}
	l.Title = r.Title()
	l.Subtitle = r.Subtitle()

	for i := range l.Bars {
		bar := &l.Bars[i]
		if r.logos == nil {
			r.fallback(bar, fmt.Errorf("no logo source"))
			continue
		}
		logo, err := r.logos.Logo(bar.Record.CurrentTeam, teams.RGBAFor(bar.Record.CurrentTeam))
		if err != nil {
			r.fallback(bar, err)
			continue
		}
		bar.Logo = logo
	}
	return l, nil
}

func (r *Renderer) fallback(bar *Bar, err error) {
	bar.Logo = nil
	r.metrics.RecordLogoFallback()
	logging.LogError("Error loading logo",
		zap.String("team", bar.Record.CurrentTeam),
		zap.String("goalie", bar.Record.Name),
		zap.Error(err))
}

// Render lays out records and writes the SVG document to w.
func (r *Renderer) Render(w io.Writer, records []goalies.Record) (*Layout, error) {
	l, err := r.Layout(records)
	if err != nil {
		return nil, err
	}
	if err := r.WriteSVG(w, l); err != nil {
		return nil, err
	}
	return l, nil
}

// RenderFile renders into path on fsys, creating parent directories.
func (r *Renderer) RenderFile(fsys afero.Fs, path string, records []goalies.Record) (*Layout, error) {
	var buf bytes.Buffer
	l, err := r.Render(&buf, records)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write chart: %w", err)
	}
	logging.LogSuccess("Chart saved", zap.String("path", path), zap.Int("bars", len(l.Bars)))
	return l, nil
}

// WriteSVG emits l as a standalone SVG document.
func (r *Renderer) WriteSVG(w io.Writer, l *Layout) error {
	fills := make([]string, len(l.Bars))
	patterns := make([]string, len(l.Bars))
	for i, bar := range l.Bars {
		fills[i] = "none"
		if encoded, ok := r.pattern(bar); ok {
			patterns[i] = encoded
			fills[i] = fmt.Sprintf("url(#%s)", patternID(bar))
		}
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(l.Width, l.Height, fmt.Sprintf(`viewBox="0 0 %s %s"`, num(l.Width), num(l.Height)))

	canvas.Def()
	for i, bar := range l.Bars {
		if patterns[i] == "" {
			continue
		}
		canvas.Pattern(patternID(bar), bar.X, bar.Y, bar.Width, bar.Height, "user")
		canvas.Rect(0, 0, bar.Width, bar.Height, attr("fill", bar.Color), `fill-opacity="1"`)
		canvas.Image(0, 0, int(bar.Width), int(bar.Height), "data:image/jpeg;base64,"+patterns[i])
		canvas.PatternEnd()
	}
	canvas.DefEnd()

	canvas.Rect(0, 0, l.Width, l.Height, `fill="white"`)
	text(canvas, l.Title, l.Width/2, l.Margins.Top/2, 20, "middle")
	text(canvas, l.Subtitle, l.Width/2, l.Margins.Top/2+25, 16, "middle")
	canvas.Line(l.Margins.Left, l.Margins.Top, l.Margins.Left, l.Baseline(), `stroke="black"`, `stroke-width="1"`)

	for _, t := range l.Ticks {
		canvas.Line(l.Margins.Left, t.Y, l.Width-l.Margins.Right, t.Y,
			`stroke="lightgray"`, `stroke-width="1"`, `stroke-dasharray="5,5"`)
		text(canvas, t.Label, l.Margins.Left-10, t.Y, 12, "end", `dominant-baseline="middle"`)
	}

	for i, bar := range l.Bars {
		canvas.Rect(bar.X, bar.Y, bar.Width, bar.Height,
			attr("id", fmt.Sprintf("bar-%d", bar.Index)),
			`class="bar"`,
			attr("fill", fills[i]),
			`stroke="gray"`, `stroke-width="1"`,
			attr("data-team", bar.Record.CurrentTeam))

		text(canvas, formatPct(bar.Value), bar.CenterX(), bar.Y-5, 12, "middle")

		ly := l.Baseline() + 35
		text(canvas, bar.Record.Name, bar.CenterX(), ly, 12, "end",
			attr("transform", fmt.Sprintf("rotate(-45, %s, %s)", num(bar.CenterX()), num(ly))))
	}
	canvas.End()

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}

// pattern returns the base64 JPEG used to fill bar, or false when the bar stays unfilled.
func (r *Renderer) pattern(bar Bar) (string, bool) {
	if bar.Logo == nil {
		return "", false
	}
	encoded, err := logos.EncodeJPEGBase64(bar.Logo)
	if err != nil {
		r.fallback(&bar, err)
		return "", false
	}
	return encoded, true
}

func patternID(bar Bar) string {
	return fmt.Sprintf("logo-%d", bar.Index)
}

// text writes an Arial label; svgo escapes the content.
func text(canvas *svg.SVG, content string, x, y, size float64, anchor string, extra ...string) {
	attrs := append([]string{
		attr("text-anchor", anchor),
		attr("font-size", num(size)),
		attr("font-family", fontFamily),
	}, extra...)
	canvas.Text(x, y, content, attrs...)
}

// attr renders name="value" with the value escaped, since svgo copies attributes verbatim.
func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
