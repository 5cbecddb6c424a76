package burnout

import "github.com/okian/thrive/internal/domain/health"

// Severity ranks how pressing a recommendation is.
type Severity string

// Severities.
const (
	Info     Severity = "info"
	Advisory Severity = "advisory"
	Urgent   Severity = "urgent"
)

// Code identifies a recommendation independent of its wording.
type Code string

// Recommendation codes.
const (
	SleepDeprived     Code = "sleep_deprived"
	SleepIrregular    Code = "sleep_irregular"
	StressHigh        Code = "stress_high"
	StressElevated    Code = "stress_elevated"
	MoodLow           Code = "mood_low"
	MoodDip           Code = "mood_dip"
	ExerciseSedentary Code = "exercise_sedentary"
	ExerciseOffTarget Code = "exercise_off_target"
	ScreenExcessive   Code = "screen_excessive"
	ScreenHigh        Code = "screen_high"
	AlertCritical     Code = "alert_critical"
	AlertWarning      Code = "alert_warning"
	KeepItUp          Code = "keep_it_up"
)

// Recommendation is one coaching item. Dimension is empty for banners.
type Recommendation struct {
	Code      Code             `json:"code"`
	Dimension health.Dimension `json:"dimension,omitempty"`
	Severity  Severity         `json:"severity"`
}

// tierRule picks between an urgent and an advisory code from the raw value.
type tierRule struct {
	urgent   Code
	advisory Code
	isUrgent func(raw float64) bool
}

var tierRules = map[health.Dimension]tierRule{
	health.Sleep: {
		urgent: SleepDeprived, advisory: SleepIrregular,
		isUrgent: func(v float64) bool { return v < 6 },
	},
	health.Stress: {
		urgent: StressHigh, advisory: StressElevated,
		isUrgent: func(v float64) bool { return v >= 8 },
	},
	health.Mood: {
		urgent: MoodLow, advisory: MoodDip,
		isUrgent: func(v float64) bool { return v <= 3 },
	},
	health.Exercise: {
		urgent: ExerciseSedentary, advisory: ExerciseOffTarget,
		isUrgent: func(v float64) bool { return v < 5 },
	},
	health.Screen: {
		urgent: ScreenExcessive, advisory: ScreenHigh,
		isUrgent: func(v float64) bool { return v > 10 },
	},
}

// recommend walks the dimensions in fixed order, then places the risk banner:
// critical and warning go first, optimal goes last.
func recommend(m health.DailyMetrics, b health.Breakdown, level RiskLevel) []Recommendation {
	recs := make([]Recommendation, 0, len(health.Dimensions)+1)
	for _, d := range health.Dimensions {
		if b.Get(d) >= recommendThreshold {
			continue
		}
		rule := tierRules[d]
		rec := Recommendation{Code: rule.advisory, Dimension: d, Severity: Advisory}
		if rule.isUrgent(m.Raw(d)) {
			rec.Code, rec.Severity = rule.urgent, Urgent
		}
		recs = append(recs, rec)
	}

	switch level {
	case Critical:
		recs = append([]Recommendation{{Code: AlertCritical, Severity: Urgent}}, recs...)
	case Warning:
		recs = append([]Recommendation{{Code: AlertWarning, Severity: Advisory}}, recs...)
	case Optimal:
		recs = append(recs, Recommendation{Code: KeepItUp, Severity: Info})
	}
	return recs
}
