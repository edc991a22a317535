package charts

import (
	"errors"
	"fmt"
	"image"

	"goalie-chart/internal/domain/goalies"
	"goalie-chart/internal/domain/teams"
)

const (
	Width  = 1200
	Height = 600
	// TopN bars are drawn unless Options.Top says otherwise
	TopN = 10
	// DomainPadding in percentage points below the lowest and above the highest bar
	DomainPadding = 0.2
	// Ticks is the number of equal y-axis divisions (Ticks+1 grid lines)
	Ticks = 5
	// BarFill is the share of each x slot covered by its bar
	BarFill = 0.8
)

var ErrNoRecords = errors.New("no goalie records to chart")

type Margins struct {
	Top, Right, Bottom, Left float64
}

var DefaultMargins = Margins{Top: 60, Right: 40, Bottom: 100, Left: 60}

// Bar is one goalie column in plot coordinates.
type Bar struct {
	Index  int
	Record goalies.Record
	Value  float64 // save percentage on a 0-100 scale
	X      float64
	Y      float64
	Width  float64
	Height float64
	Color  string // team background, "#RRGGBB"

	// Logo is the recolored logo, nil when it could not be loaded
	Logo image.Image
}

// CenterX is the horizontal middle of the bar.
func (b Bar) CenterX() float64 { return b.X + b.Width/2 }

type Tick struct {
	Value float64
	Y     float64
	Label string
}

type Layout struct {
	Title         string
	Subtitle      string
	Width, Height float64
	Margins       Margins
	PlotWidth     float64
	PlotHeight    float64
	DomainMin     float64
	DomainMax     float64
	YScale        float64 // pixels per percentage point
	Bars          []Bar
	Ticks         []Tick
}

// Baseline is the y of the x axis.
func (l *Layout) Baseline() float64 {
	return l.Height - l.Margins.Bottom
}

// ValueToY maps a percentage value to its y coordinate.
func (l *Layout) ValueToY(v float64) float64 {
	return l.Baseline() - (v-l.DomainMin)*l.YScale
}

// ComputeLayout selects the top records and lays out their bars on the default canvas.
func ComputeLayout(records []goalies.Record, top int) (*Layout, error) {
	if top <= 0 {
		top = TopN
	}
	selected := goalies.Top(records, top)
	if len(selected) == 0 {
		return nil, ErrNoRecords
	}

	l := &Layout{
		Width:   Width,
		Height:  Height,
		Margins: DefaultMargins,
	}
	l.PlotWidth = l.Width - l.Margins.Left - l.Margins.Right
	l.PlotHeight = l.Height - l.Margins.Top - l.Margins.Bottom

	minV, maxV := selected[0].SavePctPercent(), selected[0].SavePctPercent()
	for _, r := range selected[1:] {
		v := r.SavePctPercent()
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	l.DomainMin = minV - DomainPadding
	l.DomainMax = maxV + DomainPadding
	l.YScale = l.PlotHeight / (l.DomainMax - l.DomainMin)

	for i := 0; i <= Ticks; i++ {
		v := l.DomainMin + (l.DomainMax-l.DomainMin)*float64(i)/Ticks
		l.Ticks = append(l.Ticks, Tick{Value: v, Y: l.ValueToY(v), Label: formatPct(v)})
	}

	xSpacing := l.PlotWidth / float64(len(selected))
	barWidth := xSpacing * BarFill
	for i, r := range selected {
		v := r.SavePctPercent()
		h := (v - l.DomainMin) * l.YScale
		l.Bars = append(l.Bars, Bar{
			Index:  i,
			Record: r,
			Value:  v,
			X:      l.Margins.Left + float64(i)*xSpacing + (xSpacing-barWidth)/2,
			Y:      l.Baseline() - h,
			Width:  barWidth,
			Height: h,
			Color:  teams.ColorFor(r.CurrentTeam),
		})
	}
	return l, nil
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
