package matchdetail

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

var leadingNumberRegex = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// StatisticsRow is one flattened period/group/item entry.
type StatisticsRow struct {
	MatchID        int64
	Position       int
	Period         string
	GroupName      string
	Name           string
	Home           string
	Away           string
	CompareCode    *int
	StatisticsType string
	ValueType      string
	HomeValue      *float64
	AwayValue      *float64
	HomeTotal      *float64
	AwayTotal      *float64
	RenderType     *int
	Key            string
}

type statisticsPayload struct {
	Statistics []statisticsPeriod `json:"statistics"`
}

type statisticsPeriod struct {
	Period string            `json:"period"`
	Groups []statisticsGroup `json:"groups"`
}

type statisticsGroup struct {
	GroupName       string           `json:"groupName"`
	StatisticsItems []statisticsItem `json:"statisticsItems"`
}

type statisticsItem struct {
	Name           string     `json:"name"`
	Home           flexText   `json:"home"`
	Away           flexText   `json:"away"`
	CompareCode    flexNumber `json:"compareCode"`
	StatisticsType string     `json:"statisticsType"`
	ValueType      string     `json:"valueType"`
	HomeValue      flexNumber `json:"homeValue"`
	AwayValue      flexNumber `json:"awayValue"`
	HomeTotal      flexNumber `json:"homeTotal"`
	AwayTotal      flexNumber `json:"awayTotal"`
	RenderType     flexNumber `json:"renderType"`
	Key            string     `json:"key"`
}

// flexText accepts either a JSON string or a bare number.
type flexText string

func (t *flexText) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := sonic.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*t = flexText(value)
		return nil
	}
	*t = flexText(string(trimmed))
	return nil
}

// flexNumber accepts a JSON number or a numeric string. Any other value reads
// as absent.
type flexNumber struct {
	value *float64
}

func (n *flexNumber) UnmarshalJSON(raw []byte) error {
	n.value = nil
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		var value string
		if err := sonic.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		text = strings.TrimSpace(value)
	}
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	n.value = &parsed
	return nil
}

func (n flexNumber) asFloat() *float64 {
	return n.value
}

func (n flexNumber) asInt() *int {
	if n.value == nil {
		return nil
	}
	v := int(*n.value)
	return &v
}

// FlattenStatistics walks statistics -> period -> groups -> items in document
// order. Position numbers rows within the match starting at 1.
func FlattenStatistics(matchID int64, doc document.Document) ([]StatisticsRow, error) {
	var payload statisticsPayload
	if err := doc.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode statistics payload: %w", err)
	}

	out := make([]StatisticsRow, 0)
	for _, period := range payload.Statistics {
		for _, group := range period.Groups {
			for _, item := range group.StatisticsItems {
				home := string(item.Home)
				away := string(item.Away)
				out = append(out, StatisticsRow{
					MatchID:        matchID,
					Position:       len(out) + 1,
					Period:         period.Period,
					GroupName:      group.GroupName,
					Name:           item.Name,
					Home:           home,
					Away:           away,
					CompareCode:    item.CompareCode.asInt(),
					StatisticsType: item.StatisticsType,
					ValueType:      item.ValueType,
					HomeValue:      numericOrParsed(item.HomeValue.asFloat(), home),
					AwayValue:      numericOrParsed(item.AwayValue.asFloat(), away),
					HomeTotal:      item.HomeTotal.asFloat(),
					AwayTotal:      item.AwayTotal.asFloat(),
					RenderType:     item.RenderType.asInt(),
					Key:            item.Key,
				})
			}
		}
	}

	return out, nil
}

func numericOrParsed(value *float64, text string) *float64 {
	if value != nil {
		return value
	}
	return ParseStatText(text)
}

// ParseStatText reads the leading number out of display text such as "55%",
// "12/20 (60%)" or "1,75".
func ParseStatText(text string) *float64 {
	match := leadingNumberRegex.FindString(strings.TrimSpace(text))
	if match == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &parsed
}
