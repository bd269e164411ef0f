package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

type detailScript func(call int) document.Result

// fakeSource plays the role of the source site. Sessions share its scripts
// and call counters.
type fakeSource struct {
	mu sync.Mutex

	list        func(call int) document.Result
	details     map[int64]map[document.Kind]detailScript
	onDetail    func(matchID int64, kind document.Kind)
	openErr     error
	listCalls   int
	detailCalls map[string]int
	opened      int
	closed      int
}

func newFakeSource(listBody string) *fakeSource {
	return &fakeSource{
		list: func(int) document.Result {
			return document.OK(document.New([]byte(listBody)))
		},
		details:     make(map[int64]map[document.Kind]detailScript),
		detailCalls: make(map[string]int),
	}
}

func (f *fakeSource) NewSession(_ context.Context) (document.Fetcher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeSession{source: f}, nil
}

func (f *fakeSource) script(matchID int64, kind document.Kind, script detailScript) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.details[matchID] == nil {
		f.details[matchID] = make(map[document.Kind]detailScript)
	}
	f.details[matchID][kind] = script
}

func (f *fakeSource) calls(matchID int64, kind document.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[callKey(matchID, kind)]
}

func (f *fakeSource) totalDetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.detailCalls {
		total += n
	}
	return total
}

func (f *fakeSource) sessionsOpened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

type fakeSession struct {
	source *fakeSource
}

func (s *fakeSession) FetchEventList(_ context.Context, _ time.Time) document.Result {
	s.source.mu.Lock()
	s.source.listCalls++
	call := s.source.listCalls
	list := s.source.list
	s.source.mu.Unlock()

	return list(call)
}

func (s *fakeSession) FetchMatchDocument(_ context.Context, matchID int64, kind document.Kind) document.Result {
	s.source.mu.Lock()
	key := callKey(matchID, kind)
	s.source.detailCalls[key]++
	call := s.source.detailCalls[key]
	script := s.source.details[matchID][kind]
	hook := s.source.onDetail
	s.source.mu.Unlock()

	if hook != nil {
		hook(matchID, kind)
	}
	if script != nil {
		return script(call)
	}
	return document.OK(document.New([]byte(defaultDetailBody(kind))))
}

func (s *fakeSession) Close() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	s.source.closed++
	return nil
}

func callKey(matchID int64, kind document.Kind) string {
	return fmt.Sprintf("%d/%s", matchID, kind)
}

func defaultDetailBody(kind document.Kind) string {
	switch kind {
	case document.KindGraphics:
		return `{"graphPoints":[{"minute":1,"value":0.2},{"minute":45,"value":-0.1},{"minute":91,"value":5.0}]}`
	case document.KindStatistics:
		return `{"statistics":[{"period":"ALL","groups":[{"groupName":"Match overview","statisticsItems":[{"name":"Ball possession","home":"55%","away":"45%","key":"ballPossession"}]}]}]}`
	default:
		return `{"incidents":[{"incidentType":"goal","time":12,"isHome":true,"player":{"name":"Scorer"}}]}`
	}
}

func eventListBody(ids ...int64) string {
	events := make([]string, 0, len(ids))
	for _, id := range ids {
		events = append(events, fmt.Sprintf(
			`{"id":%d,"tournament":{"name":"Premier League"},"season":{"name":"23/24"},"homeTeam":{"name":"Home %d","country":{"name":"England"}},"awayTeam":{"name":"Away %d"},"homeScore":{"current":2,"period1":1},"awayScore":{"current":1,"period1":0},"status":{"description":"Ended","type":"finished"},"startTimestamp":1700000000}`,
			id, id, id,
		))
	}
	return `{"events":[` + strings.Join(events, ",") + `]}`
}
