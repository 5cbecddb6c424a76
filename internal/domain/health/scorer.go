package health

import "math"

// FloorScore is returned when a value falls outside every band.
const FloorScore = 10

// Dimension names one scored aspect of a day.
type Dimension string

// Scored dimensions.
const (
	Sleep    Dimension = "sleep"
	Stress   Dimension = "stress"
	Mood     Dimension = "mood"
	Exercise Dimension = "exercise"
	Screen   Dimension = "screen"
)

// Dimensions lists every dimension in evaluation order.
var Dimensions = []Dimension{Sleep, Stress, Mood, Exercise, Screen}

// Band maps the interval [Lo, Hi] (with per-side inclusivity) to Score.
type Band struct {
	Score       int
	Lo, Hi      float64
	LoInclusive bool
	HiInclusive bool
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	if b.LoInclusive {
		if v < b.Lo {
			return false
		}
	} else if v <= b.Lo {
		return false
	}
	if b.HiInclusive {
		return v <= b.Hi
	}
	return v < b.Hi
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// Band tables, evaluated top to bottom; first match wins.
var (
	SleepBands = []Band{
		{Score: 100, Lo: 7, Hi: 9, LoInclusive: true, HiInclusive: true},
		{Score: 75, Lo: 6, Hi: 7, LoInclusive: true},
		{Score: 50, Lo: 5, Hi: 6, LoInclusive: true},
		{Score: 25, Lo: 4, Hi: 5, LoInclusive: true},
	}
	StressBands = []Band{
		{Score: 100, Lo: negInf, Hi: 3, HiInclusive: true},
		{Score: 75, Lo: negInf, Hi: 5, HiInclusive: true},
		{Score: 50, Lo: negInf, Hi: 7, HiInclusive: true},
		{Score: 25, Lo: negInf, Hi: 9, HiInclusive: true},
	}
	MoodBands = []Band{
		{Score: 100, Lo: 8, Hi: posInf, LoInclusive: true},
		{Score: 75, Lo: 6, Hi: posInf, LoInclusive: true},
		{Score: 50, Lo: 4, Hi: posInf, LoInclusive: true},
		{Score: 25, Lo: 2, Hi: posInf, LoInclusive: true},
	}
	ExerciseBands = []Band{
		{Score: 100, Lo: 30, Hi: 90, LoInclusive: true, HiInclusive: true},
		{Score: 75, Lo: 15, Hi: 30, LoInclusive: true},
		{Score: 50, Lo: 5, Hi: 15, LoInclusive: true},
		{Score: 25, Lo: 0, Hi: posInf},
	}
	ScreenBands = []Band{
		{Score: 100, Lo: negInf, Hi: 6, HiInclusive: true},
		{Score: 75, Lo: negInf, Hi: 8, HiInclusive: true},
		{Score: 50, Lo: negInf, Hi: 10, HiInclusive: true},
		{Score: 25, Lo: negInf, Hi: 12, HiInclusive: true},
	}
)

// BandsFor returns the band table of a dimension.
func BandsFor(d Dimension) []Band {
	switch d {
	case Sleep:
		return SleepBands
	case Stress:
		return StressBands
	case Mood:
		return MoodBands
	case Exercise:
		return ExerciseBands
	case Screen:
		return ScreenBands
	default:
		return nil
	}
}

// Lookup scores v against a band table.
func Lookup(bands []Band, v float64) int {
	for _, b := range bands {
		if b.Contains(v) {
			return b.Score
		}
	}
	return FloorScore
}

// Breakdown holds the normalized score of every dimension.
type Breakdown struct {
	Sleep    int `json:"sleep"`
	Stress   int `json:"stress"`
	Mood     int `json:"mood"`
	Exercise int `json:"exercise"`
	Screen   int `json:"screen"`
}

// Get returns the score of one dimension.
func (b Breakdown) Get(d Dimension) int {
	switch d {
	case Sleep:
		return b.Sleep
	case Stress:
		return b.Stress
	case Mood:
		return b.Mood
	case Exercise:
		return b.Exercise
	case Screen:
		return b.Screen
	default:
		return 0
	}
}

// Raw returns the raw observed value of one dimension.
func (m DailyMetrics) Raw(d Dimension) float64 {
	switch d {
	case Sleep:
		return m.SleepHours
	case Stress:
		return float64(m.Stress)
	case Mood:
		return float64(m.Mood)
	case Exercise:
		return float64(m.ExerciseMinutes)
	case Screen:
		return m.ScreenTimeHours
	default:
		return math.NaN()
	}
}

// Score converts one day's metrics into a per-dimension breakdown.
func Score(m DailyMetrics) Breakdown {
	return Breakdown{
		Sleep:    Lookup(SleepBands, m.SleepHours),
		Stress:   Lookup(StressBands, float64(m.Stress)),
		Mood:     Lookup(MoodBands, float64(m.Mood)),
		Exercise: Lookup(ExerciseBands, float64(m.ExerciseMinutes)),
		Screen:   Lookup(ScreenBands, m.ScreenTimeHours),
	}
}
