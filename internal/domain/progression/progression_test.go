package progression_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/okian/thrive/internal/domain/progression"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculateLevel(t *testing.T) {
	Convey("Given cumulative XP totals", t, func() {
		Convey("When XP is zero", func() {
			Convey("Then the user is bronze in the first mastery tier", func() {
				So(progression.CalculateLevel(0), ShouldResemble, progression.LevelProgress{
					Level: progression.Bronze, Progress: 0, NextLevel: 500, Mastery: 1,
				})
			})
		})

		Convey("When XP is exactly one tier", func() {
			Convey("Then mastery increments and the level resets", func() {
				So(progression.CalculateLevel(2000), ShouldResemble, progression.LevelProgress{
					Level: progression.Bronze, Progress: 0, NextLevel: 500, Mastery: 2,
				})
			})
		})

		Convey("When XP is one short of a tier", func() {
			Convey("Then the user is at the top of platinum", func() {
				So(progression.CalculateLevel(1999), ShouldResemble, progression.LevelProgress{
					Level: progression.Platinum, Progress: 499, NextLevel: 2000, Mastery: 1,
				})
			})
		})

		Convey("When XP crosses each band boundary", func() {
			Convey("Then levels promote in order", func() {
				So(progression.CalculateLevel(499).Level, ShouldEqual, progression.Bronze)
				So(progression.CalculateLevel(500), ShouldResemble, progression.LevelProgress{Level: progression.Silver, Progress: 0, NextLevel: 1000, Mastery: 1})
				So(progression.CalculateLevel(1250), ShouldResemble, progression.LevelProgress{Level: progression.Gold, Progress: 250, NextLevel: 1500, Mastery: 1})
				So(progression.CalculateLevel(1500).Level, ShouldEqual, progression.Platinum)
				So(progression.CalculateLevel(4750), ShouldResemble, progression.LevelProgress{Level: progression.Silver, Progress: 250, NextLevel: 1000, Mastery: 3})
			})
		})

		Convey("When XP is negative", func() {
			Convey("Then it is treated as zero", func() {
				So(progression.CalculateLevel(-40), ShouldResemble, progression.CalculateLevel(0))
			})
		})
	})
}

func TestCalculatePenalty(t *testing.T) {
	Convey("Given today at mid-afternoon", t, func() {
		today := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)
		daysAgo := func(n int) *time.Time {
			d := today.AddDate(0, 0, -n)
			return &d
		}

		Convey("When nothing was ever logged", func() {
			Convey("Then there is no penalty", func() {
				So(progression.CalculatePenalty(nil, today), ShouldResemble, progression.PenaltyResult{})
			})
		})

		Convey("When the last log was today or yesterday", func() {
			Convey("Then the streak is intact", func() {
				So(progression.CalculatePenalty(daysAgo(0), today), ShouldResemble, progression.PenaltyResult{})
				So(progression.CalculatePenalty(daysAgo(1), today), ShouldResemble, progression.PenaltyResult{PenaltyXP: 0, BrokenStreak: false})
			})
		})

		Convey("When yesterday's log was late at night and today is early morning", func() {
			last := time.Date(2024, time.March, 9, 23, 59, 0, 0, time.UTC)
			now := time.Date(2024, time.March, 10, 0, 1, 0, 0, time.UTC)

			Convey("Then dates, not durations, are compared", func() {
				So(progression.CalculatePenalty(&last, now), ShouldResemble, progression.PenaltyResult{})
			})
		})

		Convey("When two or three days passed", func() {
			Convey("Then every missed day beyond the first costs 50 XP", func() {
				So(progression.CalculatePenalty(daysAgo(2), today), ShouldResemble, progression.PenaltyResult{PenaltyXP: 50, BrokenStreak: true})
				So(progression.CalculatePenalty(daysAgo(3), today), ShouldResemble, progression.PenaltyResult{PenaltyXP: 100, BrokenStreak: true})
				So(progression.CalculatePenalty(daysAgo(10), today).PenaltyXP, ShouldEqual, 450)
			})
		})

		Convey("When the last log is in the future", func() {
			Convey("Then there is no penalty", func() {
				So(progression.CalculatePenalty(daysAgo(-3), today), ShouldResemble, progression.PenaltyResult{})
			})
		})
	})

	Convey("Given a location with a daylight saving shift", t, func() {
		loc, err := time.LoadLocation("America/New_York")
		So(err, ShouldBeNil)

		Convey("When the gap spans the spring-forward night", func() {
			last := time.Date(2024, time.March, 9, 8, 0, 0, 0, loc)
			today := time.Date(2024, time.March, 11, 8, 0, 0, 0, loc)

			Convey("Then the gap is still two days", func() {
				So(progression.DaysBetween(last, today), ShouldEqual, 2)
				So(progression.CalculatePenalty(&last, today).PenaltyXP, ShouldEqual, 50)
			})
		})
	})

	Convey("Given dates centuries apart", t, func() {
		today := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)

		Convey("When the last log is at the start of the calendar", func() {
			last := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

			Convey("Then every missed day is counted", func() {
				So(progression.DaysBetween(last, today), ShouldEqual, 739906)
				So(progression.CalculatePenalty(&last, today), ShouldResemble, progression.PenaltyResult{
					PenaltyXP: (739906 - 1) * progression.PenaltyPerMissedDay, BrokenStreak: true,
				})
			})
		})

		Convey("When the last log is three centuries back", func() {
			last := time.Date(1700, time.January, 1, 0, 0, 0, 0, time.UTC)

			Convey("Then the gap is exact", func() {
				So(progression.DaysBetween(last, today), ShouldEqual, 119359)
				So(progression.DaysBetween(today, last), ShouldEqual, -119359)
			})
		})
	})
}

func TestMidnight(t *testing.T) {
	Convey("Given a timestamp", t, func() {
		ts := time.Date(2024, time.June, 1, 22, 15, 0, 0, time.UTC)

		Convey("When truncated in a zone ahead of UTC", func() {
			loc := time.FixedZone("UTC+5", 5*60*60)
			got := progression.Midnight(ts, loc)

			Convey("Then the local calendar day is used", func() {
				So(got, ShouldEqual, time.Date(2024, time.June, 2, 0, 0, 0, 0, loc))
			})
		})
	})
}
