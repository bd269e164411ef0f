package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
	"github.com/riskibarqy/matchday-ingest/internal/domain/match"
	"github.com/riskibarqy/matchday-ingest/internal/domain/matchdetail"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

type matchRecord struct {
	match       match.Match
	completedAt *time.Time
}

// Store keeps the whole two-tier model in process memory. It backs dry runs
// and tests and follows the same write rules as the Postgres store.
type Store struct {
	mu sync.RWMutex

	matches    map[int64]*matchRecord
	snapshots  map[document.Kind]map[int64]matchdetail.Snapshot
	graphics   map[int64]matchdetail.GraphicsRow
	statistics []matchdetail.StatisticsRow
	incidents  map[int64][]matchdetail.IncidentRow
	now        func() time.Time
}

func NewStore() *Store {
	snapshots := make(map[document.Kind]map[int64]matchdetail.Snapshot, 3)
	for _, kind := range document.DetailKinds() {
		snapshots[kind] = make(map[int64]matchdetail.Snapshot)
	}

	return &Store{
		matches:   make(map[int64]*matchRecord),
		snapshots: snapshots,
		graphics:  make(map[int64]matchdetail.GraphicsRow),
		incidents: make(map[int64][]matchdetail.IncidentRow),
		now:       time.Now,
	}
}

// Acquire returns the store itself; memory access needs no connection.
func (s *Store) Acquire(_ context.Context) (usecase.Store, error) {
	return s, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) UpsertMatches(_ context.Context, items []match.Match) (match.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result match.UpsertResult
	var errs error
	for _, item := range items {
		if item.ID <= 0 {
			result.Failed++
			errs = crerr.CombineErrors(errs, fmt.Errorf("insert match id=%d: invalid id", item.ID))
			continue
		}
		if _, ok := s.matches[item.ID]; ok {
			result.Existing++
			continue
		}
		s.matches[item.ID] = &matchRecord{match: item}
		result.Inserted++
	}

	return result, errs
}

func (s *Store) MatchExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.matches[id]
	return ok && record.completedAt != nil, nil
}

func (s *Store) MarkDetailsCompleted(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.matches[id]
	if !ok {
		return crerr.Mark(fmt.Errorf("mark match id=%d completed: no match row", id), usecase.ErrMatchNotFound)
	}
	if record.completedAt == nil {
		now := s.now()
		record.completedAt = &now
	}
	return nil
}

func (s *Store) SaveGraphics(_ context.Context, matchID int64, doc document.Document) error {
	if err := matchdetail.ValidatePayload(doc); err != nil {
		return fmt.Errorf("save graphics match=%d: %w", matchID, err)
	}
	row, err := matchdetail.BuildGraphicsRow(matchID, doc)
	if err != nil {
		return fmt.Errorf("save graphics match=%d: %w", matchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMatchLocked(matchID); err != nil {
		return err
	}
	s.snapshots[document.KindGraphics][matchID] = matchdetail.NewSnapshot(matchID, document.KindGraphics, doc)
	s.graphics[matchID] = row
	return nil
}

func (s *Store) SaveStatistics(_ context.Context, matchID int64, doc document.Document) error {
	if err := matchdetail.ValidatePayload(doc); err != nil {
		return fmt.Errorf("save statistics match=%d: %w", matchID, err)
	}
	if _, err := matchdetail.FlattenStatistics(matchID, doc); err != nil {
		return fmt.Errorf("save statistics match=%d: %w", matchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMatchLocked(matchID); err != nil {
		return err
	}
	s.snapshots[document.KindStatistics][matchID] = matchdetail.NewSnapshot(matchID, document.KindStatistics, doc)
	return nil
}

func (s *Store) SaveIncidents(_ context.Context, matchID int64, doc document.Document) error {
	if err := matchdetail.ValidatePayload(doc); err != nil {
		return fmt.Errorf("save incidents match=%d: %w", matchID, err)
	}
	rows, err := matchdetail.FlattenIncidents(matchID, doc)
	if err != nil {
		return fmt.Errorf("save incidents match=%d: %w", matchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMatchLocked(matchID); err != nil {
		return err
	}
	s.snapshots[document.KindIncidents][matchID] = matchdetail.NewSnapshot(matchID, document.KindIncidents, doc)
	s.incidents[matchID] = rows
	return nil
}

func (s *Store) RebuildStatisticsProjection(_ context.Context) (matchdetail.RebuildReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.snapshots[document.KindStatistics]))
	for id := range s.snapshots[document.KindStatistics] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var report matchdetail.RebuildReport
	rebuilt := make([]matchdetail.StatisticsRow, 0, len(s.statistics))
	for _, id := range ids {
		snapshot := s.snapshots[document.KindStatistics][id]
		rows, err := matchdetail.FlattenStatistics(id, snapshot.Document())
		if err != nil {
			report.Skipped = append(report.Skipped, id)
			continue
		}
		rebuilt = append(rebuilt, rows...)
	}

	s.statistics = rebuilt
	report.Rows = len(rebuilt)
	return report, nil
}

func (s *Store) requireMatchLocked(matchID int64) error {
	if _, ok := s.matches[matchID]; !ok {
		return crerr.Mark(fmt.Errorf("match id=%d has no match row", matchID), usecase.ErrMatchNotFound)
	}
	return nil
}

func (s *Store) Match(id int64) (match.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.matches[id]
	if !ok {
		return match.Match{}, false
	}
	return record.match, true
}

func (s *Store) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func (s *Store) Snapshot(kind document.Kind, matchID int64) (matchdetail.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[kind][matchID]
	return snapshot, ok
}

// PutSnapshot stores a snapshot as-is, bypassing payload checks. It stands in
// for rows written by older releases.
func (s *Store) PutSnapshot(snapshot matchdetail.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.Kind][snapshot.MatchID] = snapshot
}

func (s *Store) GraphicsRow(matchID int64) (matchdetail.GraphicsRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.graphics[matchID]
	return row, ok
}

func (s *Store) StatisticsRows() []matchdetail.StatisticsRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]matchdetail.StatisticsRow, len(s.statistics))
	copy(out, s.statistics)
	return out
}

func (s *Store) IncidentRows(matchID int64) []matchdetail.IncidentRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.incidents[matchID]
	out := make([]matchdetail.IncidentRow, len(rows))
	copy(out, rows)
	return out
}
