package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/phrazzld/tasktracker-api/internal/domain"
)

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = fmt.Errorf("%w: invalid cursor", domain.ErrValidation)

// EncodeCursor returns the opaque cursor for id.
func EncodeCursor(id int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not base64", ErrInvalidCursor, cursor)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not hold an id", ErrInvalidCursor, cursor)
	}
	if id < 0 {
		return 0, fmt.Errorf("%w: negative id", ErrInvalidCursor)
	}
	return id, nil
}
