package matchdetail

import (
	"fmt"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

const GraphicsMinutes = 90

// GraphicsRow is the fixed-width momentum projection, one slot per minute.
// Possession[0] holds minute 1.
type GraphicsRow struct {
	MatchID    int64
	Possession [GraphicsMinutes]*float64
}

func (r GraphicsRow) Minute(minute int) (float64, bool) {
	if minute < 1 || minute > GraphicsMinutes {
		return 0, false
	}
	value := r.Possession[minute-1]
	if value == nil {
		return 0, false
	}
	return *value, true
}

type graphicsPayload struct {
	GraphPoints []graphPoint `json:"graphPoints"`
}

type graphPoint struct {
	Minute *float64 `json:"minute"`
	Value  *float64 `json:"value"`
}

// BuildGraphicsRow keeps the integer part of every point's minute, drops
// minutes outside 1..90 and lets later points overwrite earlier ones.
func BuildGraphicsRow(matchID int64, doc document.Document) (GraphicsRow, error) {
	row := GraphicsRow{MatchID: matchID}

	var payload graphicsPayload
	if err := doc.Decode(&payload); err != nil {
		return row, fmt.Errorf("decode graphics payload: %w", err)
	}

	for _, point := range payload.GraphPoints {
		if point.Minute == nil {
			continue
		}
		minute := int(*point.Minute)
		if minute < 1 || minute > GraphicsMinutes {
			continue
		}
		value := 0.0
		if point.Value != nil {
			value = *point.Value
		}
		row.Possession[minute-1] = &value
	}

	return row, nil
}
