package burnout

import "strings"

// DefaultLocale is used when a requested locale has no catalog.
const DefaultLocale = "en"

// Catalog renders recommendation codes to display text. Selection policy
// lives in Evaluate; wording lives here and can be replaced per locale.
type Catalog struct {
	locales map[string]map[Code]string
}

// NewCatalog returns a catalog seeded with the built-in English texts.
func NewCatalog() *Catalog {
	return &Catalog{locales: map[string]map[Code]string{DefaultLocale: english}}
}

// Register adds or replaces the texts for a locale.
func (c *Catalog) Register(locale string, texts map[Code]string) {
	c.locales[normalizeLocale(locale)] = texts
}

// Render returns the text for rec in locale, falling back to English and
// finally to the bare code.
func (c *Catalog) Render(locale string, rec Recommendation) string {
	if texts, ok := c.locales[normalizeLocale(locale)]; ok {
		if s, ok := texts[rec.Code]; ok {
			return s
		}
	}
	if s, ok := c.locales[DefaultLocale][rec.Code]; ok {
		return s
	}
	return string(rec.Code)
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if locale == "" {
		return DefaultLocale
	}
	return locale
}

var english = map[Code]string{
	SleepDeprived:     "You are seriously short on sleep. Make 7-9 hours tonight a priority.",
	SleepIrregular:    "Your sleep is outside the healthy range. Aim for a consistent 7-9 hours.",
	StressHigh:        "Stress is very high. Take a real break and talk to someone you trust.",
	StressElevated:    "Stress is creeping up. Schedule a short walk or breathing exercise.",
	MoodLow:           "Your mood is low. Reach out to a friend or do something you enjoy.",
	MoodDip:           "Your mood dipped today. A small win or time outdoors can help.",
	ExerciseSedentary: "You barely moved today. Even a 10 minute walk makes a difference.",
	ExerciseOffTarget: "Aim for 30-90 minutes of activity to keep your energy up.",
	ScreenExcessive:   "Screen time is excessive. Set a hard cutoff an hour before bed.",
	ScreenHigh:        "Screen time is high. Try a few screen-free blocks tomorrow.",
	AlertCritical:     "Burnout risk is critical. Slow down and consider professional support.",
	AlertWarning:      "Warning signs of burnout. Ease your load over the next few days.",
	KeepItUp:          "Great balance today. Keep it up!",
}
