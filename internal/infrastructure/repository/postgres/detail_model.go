package postgres

import (
	"strconv"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/domain/matchdetail"
)

var snapshotTables = map[document.Kind]string{
	document.KindGraphics:   tableGraphicsSnapshots,
	document.KindStatistics: tableStatisticsSnapshots,
	document.KindIncidents:  tableIncidentsSnapshots,
}

type snapshotInsertModel struct {
	MatchID     int64  `db:"match_id"`
	Payload     string `db:"payload"`
	PayloadHash string `db:"payload_hash"`
}

type snapshotTableModel struct {
	MatchID int64  `db:"match_id"`
	Payload string `db:"payload"`
}

func newSnapshotInsertModel(snapshot matchdetail.Snapshot) snapshotInsertModel {
	return snapshotInsertModel{
		MatchID:     snapshot.MatchID,
		Payload:     string(snapshot.Payload),
		PayloadHash: snapshot.PayloadHash,
	}
}

// graphicsColumns returns match_id followed by possession_1..possession_90.
func graphicsColumns(row matchdetail.GraphicsRow) ([]string, []any) {
	cols := make([]string, 0, matchdetail.GraphicsMinutes+1)
	vals := make([]any, 0, matchdetail.GraphicsMinutes+1)
	cols = append(cols, "match_id")
	vals = append(vals, row.MatchID)
	for minute := 1; minute <= matchdetail.GraphicsMinutes; minute++ {
		cols = append(cols, "possession_"+strconv.Itoa(minute))
		vals = append(vals, row.Possession[minute-1])
	}
	return cols, vals
}

type statisticsInsertModel struct {
	MatchID        int64    `db:"match_id"`
	Position       int      `db:"position"`
	Period         string   `db:"period"`
	GroupName      string   `db:"group_name"`
	Name           string   `db:"name"`
	Home           string   `db:"home"`
	Away           string   `db:"away"`
	CompareCode    *int     `db:"compare_code"`
	StatisticsType string   `db:"statistics_type"`
	ValueType      string   `db:"value_type"`
	HomeValue      *float64 `db:"home_value"`
	AwayValue      *float64 `db:"away_value"`
	HomeTotal      *float64 `db:"home_total"`
	AwayTotal      *float64 `db:"away_total"`
	RenderType     *int     `db:"render_type"`
	Key            string   `db:"stat_key"`
}

func newStatisticsInsertModel(row matchdetail.StatisticsRow) statisticsInsertModel {
	return statisticsInsertModel{
		MatchID:        row.MatchID,
		Position:       row.Position,
		Period:         row.Period,
		GroupName:      row.GroupName,
		Name:           row.Name,
		Home:           row.Home,
		Away:           row.Away,
		CompareCode:    row.CompareCode,
		StatisticsType: row.StatisticsType,
		ValueType:      row.ValueType,
		HomeValue:      row.HomeValue,
		AwayValue:      row.AwayValue,
		HomeTotal:      row.HomeTotal,
		AwayTotal:      row.AwayTotal,
		RenderType:     row.RenderType,
		Key:            row.Key,
	}
}

type incidentInsertModel struct {
	MatchID       int64  `db:"match_id"`
	Sequence      int    `db:"sequence"`
	Time          *int   `db:"incident_time"`
	AddedTime     int    `db:"added_time"`
	IncidentType  string `db:"incident_type"`
	IncidentClass string `db:"incident_class"`
	TeamSide      string `db:"team_side"`
	PlayerName    string `db:"player_name"`
	HomeScore     *int   `db:"home_score"`
	AwayScore     *int   `db:"away_score"`
}

func newIncidentInsertModel(row matchdetail.IncidentRow) incidentInsertModel {
	return incidentInsertModel{
		MatchID:       row.MatchID,
		Sequence:      row.Sequence,
		Time:          row.Time,
		AddedTime:     row.AddedTime,
		IncidentType:  row.IncidentType,
		IncidentClass: row.IncidentClass,
		TeamSide:      row.TeamSide,
		PlayerName:    row.PlayerName,
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
	}
}
