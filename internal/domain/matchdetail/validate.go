package matchdetail

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-ingest/internal/domain/document"
)

// ValidatePayload rejects documents that cannot be stored as JSON.
func ValidatePayload(doc document.Document) error {
	if doc.Empty() {
		return fmt.Errorf("empty payload")
	}
	if !sonic.Valid(doc.Raw) {
		return fmt.Errorf("payload is not valid JSON")
	}
	return nil
}
