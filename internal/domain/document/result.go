package document

import "fmt"

// Outcome classifies one fetch attempt.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMalformed
	OutcomeTransport
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeTransport:
		return "transport"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the explicit value a fetch attempt hands to the retry loop.
type Result struct {
	Outcome  Outcome
	Document Document
	Err      error
}

func OK(doc Document) Result {
	return Result{Outcome: OutcomeOK, Document: doc}
}

func Malformed(err error) Result {
	return Result{Outcome: OutcomeMalformed, Err: markOrWrap(err, ErrMalformed)}
}

func Transport(err error) Result {
	return Result{Outcome: OutcomeTransport, Err: markOrWrap(err, ErrTransport)}
}

func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeOK
}

// Expect turns a successful result whose document lacks key into a malformed
// one. Failed results pass through unchanged.
func (r Result) Expect(key string) Result {
	if !r.Succeeded() || r.Document.Has(key) {
		return r
	}
	return Malformed(fmt.Errorf("document has no %q collection", key))
}
