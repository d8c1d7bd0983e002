package risk

import "math"

var barColors = map[Level]string{
	LevelLow:          "green",
	LevelIntermediary: "orange",
	LevelHigh:         "red",
}

type GaugeStep struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Level Level   `json:"level"`
	Color string  `json:"color"`
}

// Gauge is everything a chart widget needs to draw the risk meter.
type Gauge struct {
	Value     float64     `json:"value"`
	Score     float64     `json:"score"`
	Min       float64     `json:"min"`
	Max       float64     `json:"max"`
	Steps     []GaugeStep `json:"steps"`
	BarColor  string      `json:"bar_color"`
	Threshold float64     `json:"threshold"`
}

// NewGauge lays out bands on the set's display range. Value is the score
// clamped to the axis; Score keeps the unclamped value.
func NewGauge(a Assessment, bands BandSet) Gauge {
	g := Gauge{
		Score:    a.Score,
		Min:      bands.Display.Min,
		Max:      bands.Display.Max,
		BarColor: barColors[a.Level],
	}
	if g.BarColor == "" {
		g.BarColor = "gray"
	}
	g.Value = math.Min(math.Max(a.Score, g.Min), g.Max)
	g.Threshold = g.Value
	for _, band := range bands.Bands {
		from := math.Max(band.Lower, g.Min)
		to := math.Min(band.Upper, g.Max)
		if from >= to {
			continue
		}
		g.Steps = append(g.Steps, GaugeStep{From: from, To: to, Level: band.Level, Color: band.Color})
	}
	return g
}

// Percent is the clamped value as a fraction of the axis, 0..1.
func (g Gauge) Percent() float64 {
	if g.Max <= g.Min {
		return 0
	}
	return (g.Value - g.Min) / (g.Max - g.Min)
}
