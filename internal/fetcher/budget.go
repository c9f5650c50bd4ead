package fetcher

import (
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

var (
	// ErrBudgetExceeded is returned when unpacking would exceed the byte or
	// entry limits of a Budget.
	ErrBudgetExceeded = errors.New("archive: extraction budget exceeded")
	// ErrEntryNotFound is returned when a named archive entry does not exist.
	ErrEntryNotFound = errors.New("archive: entry not found")
)

// Budget bounds the total bytes and files unpacked by one ingestion call.
// A nil Budget is unlimited. Zero or negative limits are also unlimited.
type Budget struct {
	maxBytes   int64
	maxEntries int
	bytes      int64
	entries    int
}

// NewBudget creates a Budget with the given limits.
func NewBudget(maxBytes int64, maxEntries int) *Budget {
	return &Budget{maxBytes: maxBytes, maxEntries: maxEntries}
}

// TakeEntry reserves one extracted file.
func (b *Budget) TakeEntry() error {
	if b == nil {
		return nil
	}
	if b.maxEntries > 0 && b.entries >= b.maxEntries {
		return eris.Wrapf(ErrBudgetExceeded, "more than %d entries", b.maxEntries)
	}
	b.entries++
	return nil
}

// Copy copies src to dst, failing once the byte budget is exhausted.
func (b *Budget) Copy(dst io.Writer, src io.Reader) (int64, error) {
	if b == nil || b.maxBytes <= 0 {
		n, err := io.Copy(dst, src)
		if b != nil {
			b.bytes += n
		}
		if err != nil {
			return n, eris.Wrap(err, "write file")
		}
		return n, nil
	}

	remaining := b.maxBytes - b.bytes
	n, err := io.CopyN(dst, src, remaining+1)
	b.bytes += n
	if n > remaining {
		return n, eris.Wrapf(ErrBudgetExceeded, "more than %d bytes", b.maxBytes)
	}
	if err != nil && err != io.EOF {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}

// Used returns the bytes and entries consumed so far.
func (b *Budget) Used() (int64, int) {
	if b == nil {
		return 0, 0
	}
	return b.bytes, b.entries
}
