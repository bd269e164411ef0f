package match

import "time"

// Match is one scheduled fixture as listed by the source for a date.
// Source attributes are written once and never updated.
type Match struct {
	ID             int64  `validate:"gt=0"`
	Tournament     string `validate:"required"`
	Season         string
	HomeTeam       string `validate:"required"`
	AwayTeam       string `validate:"required"`
	HomeScore      string
	AwayScore      string
	Status         string
	StartTimestamp *int64
	HomeCountry    string
	AwayCountry    string
	HomeScoreHT    *int
	AwayScoreHT    *int
}

func (m Match) StartTime() (time.Time, bool) {
	if m.StartTimestamp == nil {
		return time.Time{}, false
	}
	return time.Unix(*m.StartTimestamp, 0).UTC(), true
}

// UpsertResult reports how an insert-if-absent batch went.
type UpsertResult struct {
	Inserted int
	Existing int
	Failed   int
}
