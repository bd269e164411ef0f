package match

import (
	"errors"
	"testing"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

func TestParseEventList(t *testing.T) {
	t.Parallel()

	raw := `{"events":[
	  {"id":101,"tournament":{"name":"Serie A"},"season":{"name":"Serie A 24/25"},
	   "homeTeam":{"name":"Inter","country":{"name":"Italy"}},"awayTeam":{"name":"Milan"},
	   "homeScore":{"current":2,"period1":1},"awayScore":{"current":1,"period1":0},
	   "status":{"description":"Ended","type":"finished"},"startTimestamp":1727000000},
	  {"id":102,"tournament":{"name":"Serie A"},"season":{"name":"Serie A 24/25"},
	   "homeTeam":{"name":"Roma"},"awayTeam":{"name":"Lazio"},
	   "status":{"description":"Not started"}},
	  {"id":0,"tournament":{"name":"Broken"},"homeTeam":{"name":"A"},"awayTeam":{"name":"B"}}
	]}`

	items, rejected, err := ParseEventList(document.New([]byte(raw)))
	if err != nil {
		t.Fatalf("parse event list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got=%d", len(items))
	}
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejected event, got=%d", len(rejected))
	}

	first := items[0]
	if first.HomeScore != "2" || first.AwayScore != "1" {
		t.Fatalf("unexpected scores: %q-%q", first.HomeScore, first.AwayScore)
	}
	if first.HomeScoreHT == nil || *first.HomeScoreHT != 1 {
		t.Fatalf("expected home half-time score 1")
	}
	if first.HomeCountry != "Italy" || first.AwayCountry != "N/A" {
		t.Fatalf("unexpected countries: %q %q", first.HomeCountry, first.AwayCountry)
	}
	if ts, ok := first.StartTime(); !ok || ts.Unix() != 1727000000 {
		t.Fatalf("unexpected start time: %v", ts)
	}

	second := items[1]
	if second.HomeScore != "N/A" || second.HomeScoreHT != nil {
		t.Fatalf("expected missing score markers, got=%+v", second)
	}
}

func TestParseEventList_MissingEvents(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no key":    `{"error":{"code":404}}`,
		"null list": `{"events":null}`,
		"empty":     ``,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ParseEventList(document.New([]byte(raw)))
			if !errors.Is(err, ErrNoEvents) {
				t.Fatalf("expected ErrNoEvents, got %v", err)
			}
		})
	}
}

func TestParseEventList_EmptyListIsValid(t *testing.T) {
	t.Parallel()

	items, rejected, err := ParseEventList(document.New([]byte(`{"events":[]}`)))
	if err != nil {
		t.Fatalf("parse event list: %v", err)
	}
	if len(items) != 0 || len(rejected) != 0 {
		t.Fatalf("expected empty result, got items=%d rejected=%d", len(items), len(rejected))
	}
}

func TestParseEventList_MistypedEventIsRejectedAlone(t *testing.T) {
	t.Parallel()

	raw := `{"events":[
	  {"id":201,"tournament":{"name":"Ligue 1"},"season":{"name":"Ligue 1 24/25"},
	   "homeTeam":{"name":"Lyon"},"awayTeam":{"name":"Nice"},"startTimestamp":1727000000},
	  {"id":"abc","tournament":{"name":"Ligue 1"},"homeTeam":{"name":"Lens"},"awayTeam":{"name":"Lille"}},
	  {"id":203,"tournament":{"name":"Ligue 1"},"homeTeam":{"name":"Nantes"},"awayTeam":{"name":"Brest"},
	   "startTimestamp":"soon"}
	]}`

	items, rejected, err := ParseEventList(document.New([]byte(raw)))
	if err != nil {
		t.Fatalf("expected per-event rejection, got list error %v", err)
	}
	if len(items) != 1 || items[0].ID != 201 {
		t.Fatalf("expected only match 201, got=%+v", items)
	}
	if len(rejected) != 2 {
		t.Fatalf("expected 2 rejected events, got=%d", len(rejected))
	}
}

func TestParseEventList_NonArrayEventsIsMalformed(t *testing.T) {
	t.Parallel()

	_, _, err := ParseEventList(document.New([]byte(`{"events":"none"}`)))
	if err == nil || errors.Is(err, ErrNoEvents) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
