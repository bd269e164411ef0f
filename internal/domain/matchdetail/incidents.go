package matchdetail

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

const (
	SideHome = "home"
	SideAway = "away"
)

// IncidentRow is one timeline entry. Sequence keeps the source order.
type IncidentRow struct {
	MatchID       int64
	Sequence      int
	Time          *int
	AddedTime     int
	IncidentType  string
	IncidentClass string
	TeamSide      string
	PlayerName    string
	HomeScore     *int
	AwayScore     *int
}

type incidentsPayload struct {
	Incidents []incidentItem `json:"incidents"`
}

type incidentItem struct {
	Time          *int       `json:"time"`
	AddedTime     *int       `json:"addedTime"`
	IncidentType  string     `json:"incidentType"`
	Type          string     `json:"type"`
	IncidentClass string     `json:"incidentClass"`
	TeamSide      string     `json:"teamSide"`
	IsHome        *bool      `json:"isHome"`
	Player        *playerRef `json:"player"`
	PlayerName    string     `json:"playerName"`
	HomeScore     *int       `json:"homeScore"`
	AwayScore     *int       `json:"awayScore"`
}

type playerRef struct {
	Name string `json:"name"`
}

func FlattenIncidents(matchID int64, doc document.Document) ([]IncidentRow, error) {
	var payload incidentsPayload
	if err := doc.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode incidents payload: %w", err)
	}

	out := make([]IncidentRow, 0, len(payload.Incidents))
	for idx, item := range payload.Incidents {
		row := IncidentRow{
			MatchID:       matchID,
			Sequence:      idx + 1,
			Time:          item.Time,
			IncidentType:  firstNonEmpty(item.IncidentType, item.Type),
			IncidentClass: strings.TrimSpace(item.IncidentClass),
			TeamSide:      item.side(),
			PlayerName:    item.playerName(),
			HomeScore:     item.HomeScore,
			AwayScore:     item.AwayScore,
		}
		if item.AddedTime != nil {
			row.AddedTime = *item.AddedTime
		}
		out = append(out, row)
	}

	return out, nil
}

func (i incidentItem) side() string {
	if side := strings.ToLower(strings.TrimSpace(i.TeamSide)); side != "" {
		return side
	}
	if i.IsHome == nil {
		return ""
	}
	if *i.IsHome {
		return SideHome
	}
	return SideAway
}

func (i incidentItem) playerName() string {
	if i.Player != nil && strings.TrimSpace(i.Player.Name) != "" {
		return strings.TrimSpace(i.Player.Name)
	}
	return strings.TrimSpace(i.PlayerName)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
