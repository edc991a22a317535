package logos

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"goalie-chart/internal/infra/fs"
	logging "goalie-chart/internal/infra/log"
	"goalie-chart/internal/infra/metrics"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultSize - converted logos are square
	DefaultSize = 200
	// JPEGQuality is used for every JPEG written by this package
	JPEGQuality = 95
)

// Converter rasterizes SVG logos into fixed size JPEGs on white.
type Converter struct {
	src     *fs.LogoStore
	dst     *fs.LogoStore
	size    int
	metrics *metrics.Recorder
}

func NewConverter(src, dst *fs.LogoStore, size int, rec *metrics.Recorder) *Converter {
	if size <= 0 {
		size = DefaultSize
	}
	return &Converter{src: src, dst: dst, size: size, metrics: rec}
}

// ConvertAll converts every code that has an SVG. Missing SVGs are skipped with a warning.
func (c *Converter) ConvertAll(codes []string) ([]Result, error) {
	if err := c.dst.Ensure(); err != nil {
		return nil, err
	}
	logging.LogInfo("Starting SVG to JPG conversion", zap.String("dir", c.dst.Dir()))

	var (
		results []Result
		errs    error
	)
	for _, code := range codes {
		if !c.src.Exists(code) {
			logging.LogWarn("SVG file not found", zap.String("team", code), zap.String("path", c.src.Path(code)))
			c.metrics.RecordConversion(nil, true)
			continue
		}

		res := Result{Team: code, Path: c.dst.Path(code)}
		res.Bytes, res.Err = c.convert(code)
		c.metrics.RecordConversion(res.Err, false)
		if res.Err != nil {
			logging.LogError("Error converting logo", zap.String("team", code), zap.Error(res.Err))
			errs = multierr.Append(errs, res.Err)
		} else {
			logging.LogInfo("Converted logo", zap.String("team", code), zap.Int("bytes", res.Bytes))
		}
		results = append(results, res)
	}

	logging.LogSuccess("Logo conversion complete", zap.Int("converted", len(results)-len(multierr.Errors(errs))))
	return results, errs
}

func (c *Converter) convert(code string) (int, error) {
	data, err := c.src.Read(code)
	if err != nil {
		return 0, err
	}

	img, err := RasterizeSVG(bytes.NewReader(data), c.size)
	if err != nil {
		return 0, fmt.Errorf("failed to rasterize %s: %w", code, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return 0, fmt.Errorf("failed to encode %s: %w", code, err)
	}
	if err := c.dst.Save(code, buf.Bytes()); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// RasterizeSVG draws the SVG read from r centered in a size x size white square,
// keeping its aspect ratio.
func RasterizeSVG(r io.Reader, size int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := math.Min(float64(size)/w, float64(size)/h)
	tw, th := w*scale, h*scale
	icon.SetTarget((float64(size)-tw)/2, (float64(size)-th)/2, tw, th)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	return imaging.Overlay(imaging.New(size, size, color.White), canvas, image.Pt(0, 0), 1.0), nil
}
