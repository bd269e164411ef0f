package document

import crerr "github.com/cockroachdb/errors"

var (
	ErrTransport = crerr.New("source transport failure")
	ErrMalformed = crerr.New("source document malformed")
)

func markOrWrap(err, mark error) error {
	if err == nil {
		return mark
	}
	return crerr.Mark(err, mark)
}
