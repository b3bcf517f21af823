package arena

import (
	"fmt"

	"github.com/wippyai/wasm-sandbox/errors"
)

const (
	// PageSize is the WebAssembly page size in bytes.
	PageSize = 65536

	// MaxPagesLimit is the most pages a 32-bit linear memory can address.
	MaxPagesLimit = 65536

	// DefaultMaxPages caps an arena at 100 MiB.
	DefaultMaxPages = 1600
)

// Limits bound the page count of every arena.
type Limits struct {
	// MinPages raises small arenas to a floor. Zero means no floor.
	MinPages uint32
	// MaxPages is the largest arena that may be allocated.
	MaxPages uint32
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MinPages: 1, MaxPages: DefaultMaxPages}
}

// Validate checks that the limits are usable.
func (l Limits) Validate() error {
	if l.MaxPages == 0 || l.MaxPages > MaxPagesLimit {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("max pages %d outside 1..%d", l.MaxPages, MaxPagesLimit).
			Value(l.MaxPages).
			Build()
	}
	if l.MinPages > l.MaxPages {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("min pages %d above max pages %d", l.MinPages, l.MaxPages).
			Value(l.MinPages).
			Build()
	}
	return nil
}

// Size returns the number of pages needed to hold inputLen+outputLen bytes.
// It is pure: the same arguments always give the same answer.
func Size(l Limits, inputLen, outputLen uint64) (uint32, error) {
	total := inputLen + outputLen
	if total < inputLen {
		return 0, errors.Overflow(fmt.Sprintf("input length %d plus output length %d", inputLen, outputLen), inputLen)
	}

	pages := total / PageSize
	if total%PageSize != 0 {
		pages++
	}
	if pages < uint64(l.MinPages) {
		pages = uint64(l.MinPages)
	}

	maxPages := l.MaxPages
	if maxPages == 0 || maxPages > MaxPagesLimit {
		maxPages = MaxPagesLimit
	}
	if pages > uint64(maxPages) {
		return 0, errors.TooLarge(pages, maxPages)
	}
	return uint32(pages), nil
}
