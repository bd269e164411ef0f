package matchdetail

import (
	"testing"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

const statisticsFixture = `{
  "statistics": [
    {"period": "ALL", "groups": [
      {"groupName": "Match overview", "statisticsItems": [
        {"name": "Ball possession", "home": "55%", "away": "45%", "compareCode": 1, "statisticsType": "positive", "valueType": "event", "homeValue": 55, "awayValue": 45, "renderType": 2, "key": "ballPossession"},
        {"name": "Accurate passes", "home": "412/480 (86%)", "away": "300/390 (77%)", "compareCode": 1, "statisticsType": "positive", "valueType": "team", "homeTotal": 480, "awayTotal": 390, "renderType": 3, "key": "accuratePasses"}
      ]}
    ]},
    {"period": "1ST", "groups": [
      {"groupName": "Shots", "statisticsItems": [
        {"name": "Total shots", "home": 7, "away": 3, "key": "totalShotsOnGoal"}
      ]}
    ]}
  ]
}`

func TestFlattenStatistics(t *testing.T) {
	t.Parallel()

	rows, err := FlattenStatistics(10, document.New([]byte(statisticsFixture)))
	if err != nil {
		t.Fatalf("flatten statistics: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got=%d", len(rows))
	}

	first := rows[0]
	if first.Period != "ALL" || first.GroupName != "Match overview" || first.Name != "Ball possession" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.HomeValue == nil || *first.HomeValue != 55 {
		t.Fatalf("expected home value 55, got=%v", first.HomeValue)
	}
	if first.CompareCode == nil || *first.CompareCode != 1 {
		t.Fatalf("expected compare code 1")
	}

	passes := rows[1]
	if passes.HomeValue == nil || *passes.HomeValue != 412 {
		t.Fatalf("expected parsed home value 412, got=%v", passes.HomeValue)
	}
	if passes.AwayTotal == nil || *passes.AwayTotal != 390 {
		t.Fatalf("expected away total 390, got=%v", passes.AwayTotal)
	}

	shots := rows[2]
	if shots.Home != "7" || shots.Away != "3" {
		t.Fatalf("expected numeric text to be kept, got home=%q away=%q", shots.Home, shots.Away)
	}
	if shots.Position != 3 || shots.Period != "1ST" {
		t.Fatalf("unexpected position/period: %+v", shots)
	}
}

func TestFlattenStatistics_NumericFieldsAcceptStrings(t *testing.T) {
	t.Parallel()

	raw := `{"statistics":[{"period":"ALL","groups":[{"groupName":"Overview","statisticsItems":[
	  {"name":"Corners","home":"5","away":"2","compareCode":"1","homeValue":"5","awayValue":2,"homeTotal":"","renderType":"n/a"}
	]}]}]}`

	rows, err := FlattenStatistics(11, document.New([]byte(raw)))
	if err != nil {
		t.Fatalf("flatten statistics: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got=%d", len(rows))
	}
	row := rows[0]
	if row.CompareCode == nil || *row.CompareCode != 1 {
		t.Fatalf("expected compare code 1, got=%v", row.CompareCode)
	}
	if row.HomeValue == nil || *row.HomeValue != 5 || row.AwayValue == nil || *row.AwayValue != 2 {
		t.Fatalf("unexpected values: home=%v away=%v", row.HomeValue, row.AwayValue)
	}
	if row.HomeTotal != nil || row.RenderType != nil {
		t.Fatalf("expected non-numeric text to read as absent, total=%v render=%v", row.HomeTotal, row.RenderType)
	}
}

func TestFlattenStatistics_WrongShapeFails(t *testing.T) {
	t.Parallel()

	if _, err := FlattenStatistics(12, document.New([]byte(`{"statistics":"unavailable"}`))); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestParseStatText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want *float64
	}{
		{in: "55%", want: floatPtr(55)},
		{in: "12/20 (60%)", want: floatPtr(12)},
		{in: "1,75", want: floatPtr(1.75)},
		{in: "-3", want: floatPtr(-3)},
		{in: "", want: nil},
		{in: "n/a", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := ParseStatText(tc.in)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil, got=%v", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected %v, got=%v", *tc.want, got)
			}
		})
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
