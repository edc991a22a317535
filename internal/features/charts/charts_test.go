package charts

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"

	"goalie-chart/internal/domain/goalies"

	"github.com/PuerkitoBio/goquery"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

type fakeLogos struct {
	missing map[string]bool
	asked   map[string]color.Color
}

func (f *fakeLogos) Logo(code string, bg color.Color) (image.Image, error) {
	if f.asked == nil {
		f.asked = make(map[string]color.Color)
	}
	f.asked[code] = bg
	if f.missing[code] {
		return nil, fmt.Errorf("open Logos_JPG/%s_light.jpg: file does not exist", code)
	}
	return imaging.New(20, 20, bg), nil
}

func render(t *testing.T, src LogoSource, records []goalies.Record) (*Layout, string, *goquery.Document) {
	t.Helper()
	var buf bytes.Buffer
	r := NewRenderer(src, Options{Season: "20242025", MinGames: 19}, nil)
	l, err := r.Render(&buf, records)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse svg: %v", err)
	}
	return l, buf.String(), doc
}

func attrFloat(t *testing.T, s *goquery.Selection, name string) float64 {
	t.Helper()
	v, ok := s.Attr(name)
	if !ok {
		t.Fatalf("missing attribute %s", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		t.Fatalf("attribute %s=%q is not a number", name, v)
	}
	return f
}

func barByTeam(t *testing.T, doc *goquery.Document, team string) *goquery.Selection {
	t.Helper()
	sel := doc.Find(fmt.Sprintf("rect.bar[data-team='%s']", team))
	if sel.Length() != 1 {
		t.Fatalf("expected one bar for %s, got %d", team, sel.Length())
	}
	return sel
}

func manyRecords(n int) []goalies.Record {
	var out []goalies.Record
	for i := 0; i < n; i++ {
		out = append(out, goalies.New(
			fmt.Sprintf("Goalie Number%02d", i),
			20+i,
			0.890+float64(i)*0.002,
			"COL",
		))
	}
	return out
}

func TestTwoGoalieExample(t *testing.T) {
	records := []goalies.Record{
		goalies.New("John Smith", 30, 0.925, "COL"),
		goalies.New("Adam Lee", 30, 0.930, "WPG"),
	}
	_, raw, doc := render(t, &fakeLogos{}, records)

	if n := doc.Find("rect.bar").Length(); n != 2 {
		t.Fatalf("expected 2 bars, got %d", n)
	}
	lee := attrFloat(t, barByTeam(t, doc, "WPG"), "height")
	smith := attrFloat(t, barByTeam(t, doc, "COL"), "height")
	if lee <= smith {
		t.Fatalf("expected A. Lee taller than J. Smith, got %v <= %v", lee, smith)
	}

	for _, want := range []string{"A. Lee", "J. Smith", "93.00%", "92.50%", "Top 10 NHL Goalies by Save Percentage (2024-25 Season)", "Min 19 Games"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
	if got := strings.Count(raw, "data:image/jpeg;base64,"); got != 2 {
		t.Fatalf("expected 2 embedded logos, got %d", got)
	}
}

func TestSelectsTopTen(t *testing.T) {
	records := manyRecords(15)
	l, raw, doc := render(t, &fakeLogos{}, records)

	if n := doc.Find("rect.bar").Length(); n != 10 {
		t.Fatalf("expected 10 bars, got %d", n)
	}
	if n := doc.Find("pattern").Length(); n != 10 {
		t.Fatalf("expected 10 patterns, got %d", n)
	}
	for i := 0; i < 5; i++ {
		if strings.Contains(raw, fmt.Sprintf("G. Number%02d<", i)) {
			t.Fatalf("goalie %d should not be charted", i)
		}
	}
	if l.Bars[0].Record.Name != "G. Number14" {
		t.Fatalf("expected best goalie first, got %s", l.Bars[0].Record.Name)
	}
}

func TestFewerThanTenAreNotPadded(t *testing.T) {
	l, _, doc := render(t, &fakeLogos{}, manyRecords(4))
	if len(l.Bars) != 4 || doc.Find("rect.bar").Length() != 4 {
		t.Fatalf("expected 4 bars, got %d", len(l.Bars))
	}
}

func TestBarHeightsAreMonotonic(t *testing.T) {
	records := manyRecords(12)
	records[3].SavePct = records[7].SavePct
	l, err := ComputeLayout(records, TopN)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(l.Bars); i++ {
		prev, cur := l.Bars[i-1], l.Bars[i]
		if cur.Value > prev.Value || cur.Height > prev.Height {
			t.Fatalf("bar %d (%v, %v) taller than bar %d (%v, %v)", i, cur.Value, cur.Height, i-1, prev.Value, prev.Height)
		}
		if math.Abs(cur.Y+cur.Height-l.Baseline()) > 1e-9 {
			t.Fatalf("bar %d does not sit on the baseline", i)
		}
	}
}

func TestComputeLayoutGeometry(t *testing.T) {
	records := []goalies.Record{
		goalies.New("John Smith", 30, 0.925, "COL"),
		goalies.New("Adam Lee", 30, 0.930, "WPG"),
	}
	l, err := ComputeLayout(records, TopN)
	if err != nil {
		t.Fatal(err)
	}

	if l.PlotWidth != 1100 || l.PlotHeight != 440 {
		t.Fatalf("unexpected plot area %vx%v", l.PlotWidth, l.PlotHeight)
	}
	if math.Abs(l.DomainMin-92.3) > 1e-9 || math.Abs(l.DomainMax-93.2) > 1e-9 {
		t.Fatalf("unexpected domain [%v, %v]", l.DomainMin, l.DomainMax)
	}
	if math.Abs(l.YScale-440/0.9) > 1e-9 {
		t.Fatalf("unexpected y scale %v", l.YScale)
	}
	if l.Bars[0].X != 115 || l.Bars[0].Width != 440 || l.Bars[1].X != 665 {
		t.Fatalf("unexpected bar positions %+v", l.Bars)
	}
	if l.Bars[0].Color != "#7B303E" || l.Bars[1].Color != "#236192" {
		t.Fatalf("unexpected bar colors %s %s", l.Bars[0].Color, l.Bars[1].Color)
	}

	if len(l.Ticks) != Ticks+1 {
		t.Fatalf("expected %d ticks, got %d", Ticks+1, len(l.Ticks))
	}
	if l.Ticks[0].Y != l.Baseline() || math.Abs(l.Ticks[Ticks].Y-l.Margins.Top) > 1e-9 {
		t.Fatalf("ticks should span the plot, got %v..%v", l.Ticks[0].Y, l.Ticks[Ticks].Y)
	}
	if l.Ticks[0].Label != "92.30%" || l.Ticks[Ticks].Label != "93.20%" {
		t.Fatalf("unexpected tick labels %s %s", l.Ticks[0].Label, l.Ticks[Ticks].Label)
	}
}

func TestSingleRecordLayout(t *testing.T) {
	l, err := ComputeLayout([]goalies.Record{goalies.New("Only One", 19, 0.91, "SEA")}, TopN)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Bars) != 1 || l.Bars[0].Height <= 0 || l.Bars[0].Height >= l.PlotHeight {
		t.Fatalf("unexpected single bar %+v", l.Bars)
	}
}

func TestUnknownTeamUsesDefaultGray(t *testing.T) {
	src := &fakeLogos{}
	_, _, doc := render(t, src, []goalies.Record{goalies.New("Nobody Special", 25, 0.915, "XYZ")})

	fill, _ := doc.Find("pattern rect").First().Attr("fill")
	if fill != "#808080" {
		t.Fatalf("expected gray pattern background, got %q", fill)
	}
	if got := src.asked["XYZ"]; got != (color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}) {
		t.Fatalf("expected logo requested on gray, got %v", got)
	}
}

func TestMissingLogoRendersUnfilledBar(t *testing.T) {
	records := []goalies.Record{
		goalies.New("John Smith", 30, 0.925, "COL"),
		goalies.New("Adam Lee", 30, 0.930, "WPG"),
	}
	l, raw, doc := render(t, &fakeLogos{missing: map[string]bool{"COL": true}}, records)

	if fill, _ := barByTeam(t, doc, "COL").Attr("fill"); fill != "none" {
		t.Fatalf("expected unfilled bar, got %q", fill)
	}
	if stroke, _ := barByTeam(t, doc, "COL").Attr("stroke"); stroke != "gray" {
		t.Fatalf("expected gray outline, got %q", stroke)
	}
	if fill, _ := barByTeam(t, doc, "WPG").Attr("fill"); fill != "url(#logo-0)" {
		t.Fatalf("expected pattern fill, got %q", fill)
	}
	if doc.Find("pattern").Length() != 1 {
		t.Fatalf("expected only one pattern")
	}
	if !strings.Contains(raw, "J. Smith") || l.Bars[1].Logo != nil {
		t.Fatalf("expected degraded bar to keep its label")
	}
}

func TestNilLogoSourceDegradesEveryBar(t *testing.T) {
	_, _, doc := render(t, nil, manyRecords(3))
	if doc.Find("pattern").Length() != 0 {
		t.Fatalf("expected no patterns")
	}
	if doc.Find("rect.bar[fill='none']").Length() != 3 {
		t.Fatalf("expected every bar unfilled")
	}
}

func TestEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewRenderer(&fakeLogos{}, Options{}, nil).Render(&buf, nil)
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written")
	}
}

func TestSVGStructure(t *testing.T) {
	_, raw, doc := render(t, &fakeLogos{}, manyRecords(3))

	if !strings.HasPrefix(raw, "<?xml") {
		t.Fatalf("expected xml declaration")
	}
	if n := doc.Find("line[stroke-dasharray='5,5']").Length(); n != Ticks+1 {
		t.Fatalf("expected %d grid lines, got %d", Ticks+1, n)
	}
	names := doc.Find("text[transform]")
	if names.Length() != 3 {
		t.Fatalf("expected 3 rotated name labels, got %d", names.Length())
	}
	tr, _ := names.First().Attr("transform")
	if !strings.HasPrefix(tr, "rotate(-45, ") || !strings.HasSuffix(tr, ", 535)") {
		t.Fatalf("unexpected name transform %q", tr)
	}
}

func TestSVGEscapesNamesAndAttributes(t *testing.T) {
	records := []goalies.Record{
		goalies.New("Jean O'Brien&<Co>", 30, 0.930, `X"Y`),
		goalies.New("Adam Lee", 25, 0.920, "WPG"),
	}
	_, raw, doc := render(t, &fakeLogos{missing: map[string]bool{"WPG": true}}, records)

	dec := xml.NewDecoder(strings.NewReader(raw))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("expected well-formed xml: %v", err)
		}
	}

	if !strings.Contains(raw, "J. O&#39;Brien&amp;&lt;Co&gt;") {
		t.Fatalf("expected escaped name label")
	}
	found := false
	doc.Find("text").Each(func(_ int, s *goquery.Selection) {
		if s.Text() == "J. O'Brien&<Co>" {
			found = true
		}
	})
	if !found {
		t.Fatalf("expected name label to round trip")
	}
	if team, _ := doc.Find("rect.bar").First().Attr("data-team"); team != `X"Y` {
		t.Fatalf("expected escaped team attribute, got %q", team)
	}
	if fill, _ := barByTeam(t, doc, "WPG").Attr("fill"); fill != "none" {
		t.Fatalf("expected unfilled WPG bar, got %q", fill)
	}
}

func TestRenderFileWritesSVG(t *testing.T) {
	mem := afero.NewMemMapFs()
	r := NewRenderer(&fakeLogos{}, Options{Season: "20242025", MinGames: 19}, nil)
	path := "out/" + DefaultOutput
	if _, err := r.RenderFile(mem, path, manyRecords(2)); err != nil {
		t.Fatal(err)
	}
	data, err := afero.ReadFile(mem, path)
	if err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("expected svg written, err=%v", err)
	}
}

func TestWritePNG(t *testing.T) {
	r := NewRenderer(&fakeLogos{missing: map[string]bool{"WPG": true}}, Options{Season: "20242025", MinGames: 19}, nil)
	records := append(manyRecords(3), goalies.New("Adam Lee", 30, 0.930, "WPG"))
	l, err := r.Layout(records)
	if err != nil {
		t.Fatal(err)
	}

	mem := afero.NewMemMapFs()
	path := PreviewPath("out/" + DefaultOutput)
	if path != "out/nhl_goalie_save_percentages.png" {
		t.Fatalf("unexpected preview path %s", path)
	}
	if err := WritePNGFile(mem, path, l); err != nil {
		t.Fatal(err)
	}
	f, err := mem.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("expected png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestSeasonLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20242025", "2024-25"},
		{"20192020", "2019-20"},
		{"2024", "2024"},
		{"2024abcd", "2024abcd"},
	}
	for _, tc := range tests {
		if got := SeasonLabel(tc.in); got != tc.want {
			t.Fatalf("SeasonLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
