package book

import (
	"errors"
	"fmt"

	"github.com/0xArchiveIO/bookreplay/internal/model"
)

// ErrNotInitialized is returned by Apply when the book has no usable
// checkpoint state, either because Initialize was never called or because
// the last Initialize failed.
var ErrNotInitialized = errors.New("book: not initialized")

// ParseError reports a checkpoint level whose price or size could not be
// parsed as a finite number. Initialize fails as a whole on the first such
// level; nothing is dropped or zero-filled.
type ParseError struct {
	Side  model.Side // side the level was on
	Index int        // position within the side's level list
	Field string     // "price" or "size"
	Value string     // offending wire text
	Err   error      // underlying parse failure
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("book: parse checkpoint %s level %d: %s %q: %v",
		e.Side, e.Index, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
