package match

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

const missingValue = "N/A"

// ErrNoEvents marks an event list document without an events collection.
var ErrNoEvents = crerr.New("event list has no events collection")

var validate = validator.New()

type eventListEnvelope struct {
	Events *[]json.RawMessage `json:"events"`
}

type eventItem struct {
	ID             int64       `json:"id"`
	Tournament     namedRef    `json:"tournament"`
	Season         namedRef    `json:"season"`
	HomeTeam       teamRef     `json:"homeTeam"`
	AwayTeam       teamRef     `json:"awayTeam"`
	HomeScore      *scoreBlock `json:"homeScore"`
	AwayScore      *scoreBlock `json:"awayScore"`
	Status         statusRef   `json:"status"`
	StartTimestamp *int64      `json:"startTimestamp"`
}

type namedRef struct {
	Name string `json:"name"`
}

type teamRef struct {
	Name    string    `json:"name"`
	Country *namedRef `json:"country"`
}

type scoreBlock struct {
	Current *int `json:"current"`
	Period1 *int `json:"period1"`
}

type statusRef struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

// ParseEventList decodes the per-date list. Each event is decoded on its own;
// events that fail to decode or validate are returned in rejected and left
// out of the match list.
func ParseEventList(doc document.Document) (items []Match, rejected []error, err error) {
	if !doc.Has(document.EventListKey) {
		return nil, nil, ErrNoEvents
	}

	var envelope eventListEnvelope
	if err := doc.Decode(&envelope); err != nil {
		return nil, nil, crerr.Wrap(err, "decode event list")
	}
	if envelope.Events == nil {
		return nil, nil, ErrNoEvents
	}

	items = make([]Match, 0, len(*envelope.Events))
	for idx, raw := range *envelope.Events {
		var event eventItem
		if derr := sonic.Unmarshal(raw, &event); derr != nil {
			rejected = append(rejected, fmt.Errorf("event #%d: decode: %w", idx, derr))
			continue
		}
		item := event.toMatch()
		if verr := validate.Struct(item); verr != nil {
			rejected = append(rejected, fmt.Errorf("event #%d id=%d: %w", idx, event.ID, verr))
			continue
		}
		items = append(items, item)
	}

	return items, rejected, nil
}

func (e eventItem) toMatch() Match {
	return Match{
		ID:             e.ID,
		Tournament:     strings.TrimSpace(e.Tournament.Name),
		Season:         strings.TrimSpace(e.Season.Name),
		HomeTeam:       strings.TrimSpace(e.HomeTeam.Name),
		AwayTeam:       strings.TrimSpace(e.AwayTeam.Name),
		HomeScore:      e.HomeScore.currentText(),
		AwayScore:      e.AwayScore.currentText(),
		Status:         strings.TrimSpace(e.Status.Description),
		StartTimestamp: e.StartTimestamp,
		HomeCountry:    e.HomeTeam.countryName(),
		AwayCountry:    e.AwayTeam.countryName(),
		HomeScoreHT:    e.HomeScore.halfTime(),
		AwayScoreHT:    e.AwayScore.halfTime(),
	}
}

func (s *scoreBlock) currentText() string {
	if s == nil || s.Current == nil {
		return missingValue
	}
	return strconv.Itoa(*s.Current)
}

func (s *scoreBlock) halfTime() *int {
	if s == nil {
		return nil
	}
	return s.Period1
}

func (t teamRef) countryName() string {
	if t.Country == nil || strings.TrimSpace(t.Country.Name) == "" {
		return missingValue
	}
	return strings.TrimSpace(t.Country.Name)
}
