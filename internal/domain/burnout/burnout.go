// Package burnout combines per-dimension health scores into a weighted
// burnout assessment with a risk tier, ordered recommendations and a
// doctor-referral flag.
package burnout

import "github.com/okian/thrive/internal/domain/health"

// RiskLevel classifies the overall score.
type RiskLevel string

// Risk tiers, best to worst.
const (
	Optimal  RiskLevel = "optimal"
	Moderate RiskLevel = "moderate"
	Warning  RiskLevel = "warning"
	Critical RiskLevel = "critical"
)

// Weights in percent; they sum to 100.
var Weights = map[health.Dimension]int{
	health.Sleep:    30,
	health.Stress:   25,
	health.Mood:     20,
	health.Exercise: 15,
	health.Screen:   10,
}

// Tier thresholds applied to the rounded overall score.
const (
	optimalMin  = 80
	moderateMin = 60
	warningMin  = 40

	// recommendThreshold is the breakdown score below which a dimension
	// earns a recommendation.
	recommendThreshold = 75
)

// Referral triggers independent of the overall score.
const (
	referralSleepBelow = 5.0
	referralMoodAtMost = 2
	referralStressMin  = 9
)

// Assessment is the full result of evaluating one day.
type Assessment struct {
	OverallScore    int              `json:"overall_score"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	Breakdown       health.Breakdown `json:"breakdown"`
	Recommendations []Recommendation `json:"recommendations"`
	DoctorReferral  bool             `json:"doctor_referral"`
}

// Evaluate scores one day of metrics. It is a pure function of m.
func Evaluate(m health.DailyMetrics) Assessment {
	b := health.Score(m)
	overall := Overall(b)
	level := Tier(overall)

	return Assessment{
		OverallScore:    overall,
		RiskLevel:       level,
		Breakdown:       b,
		Recommendations: recommend(m, b, level),
		DoctorReferral:  needsReferral(m, level),
	}
}

// Overall returns the weighted score rounded half-up. The sum is kept in
// integer hundredths so .5 boundaries round exactly.
func Overall(b health.Breakdown) int {
	sum := 0
	for _, d := range health.Dimensions {
		sum += Weights[d] * b.Get(d)
	}
	return (sum + 50) / 100
}

// Tier maps an overall score to its risk level.
func Tier(overall int) RiskLevel {
	switch {
	case overall >= optimalMin:
		return Optimal
	case overall >= moderateMin:
		return Moderate
	case overall >= warningMin:
		return Warning
	default:
		return Critical
	}
}

func needsReferral(m health.DailyMetrics, level RiskLevel) bool {
	return level == Critical ||
		m.SleepHours < referralSleepBelow ||
		m.Mood <= referralMoodAtMost ||
		m.Stress >= referralStressMin
}
