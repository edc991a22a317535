package logos

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"goalie-chart/internal/infra/fs"

	"github.com/disintegration/imaging"
)

// WhiteThreshold - a pixel is background when R, G and B are all above it
const WhiteThreshold = 240

// Recolorer loads converted JPG logos and puts them on a team colored background.
type Recolorer struct {
	store *fs.LogoStore
}

func NewRecolorer(store *fs.LogoStore) *Recolorer {
	return &Recolorer{store: store}
}

// Logo returns the logo for code with its white background replaced by bg.
func (r *Recolorer) Logo(code string, bg color.Color) (image.Image, error) {
	f, err := r.store.Open(code)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo for %s: %w", code, err)
	}
	return KeyOnto(img, bg), nil
}

// KeyWhite returns a copy of img where near-white pixels are fully transparent.
func KeyWhite(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i] > WhiteThreshold && out.Pix[i+1] > WhiteThreshold && out.Pix[i+2] > WhiteThreshold {
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 0, 0, 0, 0
		}
	}
	return out
}

// KeyOnto composites the keyed logo over a solid bg of the same size.
func KeyOnto(img image.Image, bg color.Color) *image.NRGBA {
	keyed := KeyWhite(img)
	b := keyed.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), bg), keyed, image.Pt(0, 0), 1.0)
}

// EncodeJPEGBase64 encodes img as a quality 95 JPEG in standard base64.
func EncodeJPEGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
