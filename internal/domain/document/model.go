package document

import (
	"strings"

	sonic "github.com/bytedance/sonic"
)

// Kind names one per-match detail document served by the source.
type Kind string

const (
	KindGraphics   Kind = "graphics"
	KindStatistics Kind = "statistics"
	KindIncidents  Kind = "incidents"
)

// EventListKey is the collection every event list document must carry.
const EventListKey = "events"

// PayloadKey is the top-level collection a document of kind k must carry.
func (k Kind) PayloadKey() string {
	switch k {
	case KindGraphics:
		return "graphPoints"
	case KindStatistics:
		return "statistics"
	case KindIncidents:
		return "incidents"
	default:
		return ""
	}
}

// DetailKinds lists kinds in the order they are fetched and persisted.
func DetailKinds() []Kind {
	return []Kind{KindGraphics, KindStatistics, KindIncidents}
}

func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindGraphics:
		return KindGraphics, true
	case KindStatistics:
		return KindStatistics, true
	case KindIncidents:
		return KindIncidents, true
	default:
		return "", false
	}
}

// Document is a JSON payload exactly as the source returned it.
type Document struct {
	Raw []byte
}

func New(raw []byte) Document {
	return Document{Raw: append([]byte(nil), raw...)}
}

func (d Document) Empty() bool {
	return len(strings.TrimSpace(string(d.Raw))) == 0
}

// Has reports whether the top-level object carries key.
func (d Document) Has(key string) bool {
	if d.Empty() {
		return false
	}
	node, err := sonic.Get(d.Raw, key)
	if err != nil {
		return false
	}
	return node.Exists()
}

func (d Document) Decode(target any) error {
	return sonic.Unmarshal(d.Raw, target)
}
