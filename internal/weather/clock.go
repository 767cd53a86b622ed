// Package weather drives the game clock, climate, daily conditions, and
// heat wave emergencies.
package weather

// Calendar constants.
const (
	TicksPerHour  = 100
	HoursPerDay   = 24
	DaysPerMonth  = 30
	MonthsPerYear = 12

	TicksPerDay   = TicksPerHour * HoursPerDay
	TicksPerMonth = TicksPerDay * DaysPerMonth
	TicksPerYear  = TicksPerMonth * MonthsPerYear
)

// Season of the year.
type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

// Name returns the display name.
func (s Season) Name() string {
	switch s {
	case SeasonSpring:
		return "spring"
	case SeasonSummer:
		return "summer"
	case SeasonAutumn:
		return "autumn"
	case SeasonWinter:
		return "winter"
	}
	return "spring"
}

// GameClock converts the monotonic tick counter into calendar time. Paused
// clocks stop advancing; the tick counter itself never rewinds.
type GameClock struct {
	Ticks  uint64 `json:"ticks"`
	Paused bool   `json:"paused"`
}

// Advance moves the clock one tick unless paused. Returns false when paused.
func (c *GameClock) Advance() bool {
	if c.Paused {
		return false
	}
	c.Ticks++
	return true
}

// Hour of day, 0..23.
func (c *GameClock) Hour() int {
	return int(c.Ticks/TicksPerHour) % HoursPerDay
}

// Day since world start.
func (c *GameClock) Day() int {
	return int(c.Ticks / TicksPerDay)
}

// DayOfMonth is 1-based.
func (c *GameClock) DayOfMonth() int {
	return c.Day()%DaysPerMonth + 1
}

// Month since world start.
func (c *GameClock) Month() int {
	return int(c.Ticks / TicksPerMonth)
}

// MonthOfYear is 0-based, 0..11.
func (c *GameClock) MonthOfYear() int {
	return c.Month() % MonthsPerYear
}

// Year since world start.
func (c *GameClock) Year() int {
	return int(c.Ticks / TicksPerYear)
}

// Season for the current month (Dec-Feb winter, and so on).
func (c *GameClock) Season() Season {
	switch c.MonthOfYear() {
	case 2, 3, 4:
		return SeasonSpring
	case 5, 6, 7:
		return SeasonSummer
	case 8, 9, 10:
		return SeasonAutumn
	}
	return SeasonWinter
}

// Weekday is false on the two rest days of each ten-day stretch.
func (c *GameClock) Weekday() bool {
	return c.Day()%10 < 8
}

// Boundary predicates used by the engine to trigger cadenced systems. Each
// is true exactly on the first tick of the new period.
func (c *GameClock) IsHourBoundary() bool  { return c.Ticks%TicksPerHour == 0 }
func (c *GameClock) IsDayBoundary() bool   { return c.Ticks%TicksPerDay == 0 }
func (c *GameClock) IsMonthBoundary() bool { return c.Ticks%TicksPerMonth == 0 }
func (c *GameClock) IsYearBoundary() bool  { return c.Ticks%TicksPerYear == 0 }
