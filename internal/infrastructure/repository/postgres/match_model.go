package postgres

import "github.com/riskibarqy/matchday-ingest/internal/domain/match"

type matchInsertModel struct {
	ID             int64  `db:"id"`
	Tournament     string `db:"tournament"`
	Season         string `db:"season"`
	HomeTeam       string `db:"home_team"`
	AwayTeam       string `db:"away_team"`
	HomeScore      string `db:"home_score"`
	AwayScore      string `db:"away_score"`
	HomeScoreHT    *int   `db:"home_score_ht"`
	AwayScoreHT    *int   `db:"away_score_ht"`
	Status         string `db:"status"`
	StartTimestamp *int64 `db:"start_timestamp"`
	HomeCountry    string `db:"home_country"`
	AwayCountry    string `db:"away_country"`
}

func newMatchInsertModel(item match.Match) matchInsertModel {
	return matchInsertModel{
		ID:             item.ID,
		Tournament:     item.Tournament,
		Season:         item.Season,
		HomeTeam:       item.HomeTeam,
		AwayTeam:       item.AwayTeam,
		HomeScore:      item.HomeScore,
		AwayScore:      item.AwayScore,
		HomeScoreHT:    item.HomeScoreHT,
		AwayScoreHT:    item.AwayScoreHT,
		Status:         item.Status,
		StartTimestamp: item.StartTimestamp,
		HomeCountry:    item.HomeCountry,
		AwayCountry:    item.AwayCountry,
	}
}
