package matchdetail

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

// Snapshot is the verbatim copy of one detail document for a match.
type Snapshot struct {
	MatchID     int64
	Kind        document.Kind
	Payload     []byte
	PayloadHash string
}

func NewSnapshot(matchID int64, kind document.Kind, doc document.Document) Snapshot {
	sum := sha256.Sum256(doc.Raw)
	return Snapshot{
		MatchID:     matchID,
		Kind:        kind,
		Payload:     append([]byte(nil), doc.Raw...),
		PayloadHash: hex.EncodeToString(sum[:]),
	}
}

func (s Snapshot) Document() document.Document {
	return document.Document{Raw: s.Payload}
}
