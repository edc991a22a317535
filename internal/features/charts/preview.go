package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logging "goalie-chart/internal/infra/log"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Arial first to match the SVG, the bundled Go font when none is installed.
var fontPaths = []string{
	"/usr/share/fonts/truetype/msttcorefonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		for _, path := range fontPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if f, err := truetype.Parse(data); err == nil {
				logging.LogDebug("Loaded chart font", zap.String("path", path))
				fontTTF = f
				return
			}
			logging.LogWarn("Font file exists but failed to load", zap.String("path", path))
		}
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

func face(size float64) (font.Face, error) {
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// WritePNG draws the same chart as WriteSVG as a PNG, used as the Telegram photo.
func WritePNG(w io.Writer, l *Layout) error {
	titleFace, err := face(20)
	if err != nil {
		return err
	}
	subtitleFace, err := face(16)
	if err != nil {
		return err
	}
	labelFace, err := face(12)
	if err != nil {
		return err
	}

	dc := gg.NewContext(int(l.Width), int(l.Height))
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.Black)
	dc.SetFontFace(titleFace)
	dc.DrawStringAnchored(l.Title, l.Width/2, l.Margins.Top/2, 0.5, 0)
	dc.SetFontFace(subtitleFace)
	dc.DrawStringAnchored(l.Subtitle, l.Width/2, l.Margins.Top/2+25, 0.5, 0)

	// y axis
	dc.SetLineWidth(1)
	dc.DrawLine(l.Margins.Left, l.Margins.Top, l.Margins.Left, l.Baseline())
	dc.Stroke()

	dc.SetFontFace(labelFace)
	for _, t := range l.Ticks {
		dc.SetHexColor("#D3D3D3")
		dc.SetDash(5, 5)
		dc.DrawLine(l.Margins.Left, t.Y, l.Width-l.Margins.Right, t.Y)
		dc.Stroke()
		dc.SetDash()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(t.Label, l.Margins.Left-10, t.Y, 1, 0.5)
	}

	for _, bar := range l.Bars {
		if bar.Logo != nil {
			dc.SetHexColor(bar.Color)
			dc.DrawRectangle(bar.X, bar.Y, bar.Width, bar.Height)
			dc.Fill()

			// fit keeps the aspect ratio like the SVG image default
			if bw, bh := int(bar.Width), int(bar.Height); bw > 0 && bh > 0 {
				logo := imaging.Fit(bar.Logo, bw, bh, imaging.Lanczos)
				lb := logo.Bounds()
				dc.DrawImage(logo,
					int(bar.X+(bar.Width-float64(lb.Dx()))/2),
					int(bar.Y+(bar.Height-float64(lb.Dy()))/2))
			}
		}
		dc.SetHexColor("#808080")
		dc.DrawRectangle(bar.X, bar.Y, bar.Width, bar.Height)
		dc.Stroke()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(formatPct(bar.Value), bar.CenterX(), bar.Y-5, 0.5, 0)

		ly := l.Baseline() + 35
		dc.Push()
		dc.RotateAbout(gg.Radians(-45), bar.CenterX(), ly)
		dc.DrawStringAnchored(bar.Record.Name, bar.CenterX(), ly, 1, 0)
		dc.Pop()
	}

	return dc.EncodePNG(w)
}

// PreviewPath is the PNG written next to an SVG chart.
func PreviewPath(svgPath string) string {
	return strings.TrimSuffix(svgPath, filepath.Ext(svgPath)) + ".png"
}

// WritePNGFile renders l to path on fsys.
func WritePNGFile(fsys afero.Fs, path string, l *Layout) error {
	var buf bytes.Buffer
	if err := WritePNG(&buf, l); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	logging.LogSuccess("Chart preview saved", zap.String("path", path))
	return nil
}
