package preprocess

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDateParse is the sentinel kind of DateParseError.
var ErrDateParse = errors.New("date parse failed")

// maxExampleRows bounds the offending rows quoted in a DateParseError message.
const maxExampleRows = 5

// BadDate is one unparseable date cell.
type BadDate struct {
	Line     int
	PlayerID string
	Value    string
}

// DateParseError reports every row of a table whose date could not be parsed.
type DateParseError struct {
	Table  string
	Column string
	Rows   []BadDate
}

func (e *DateParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: failed to parse %d value(s) in column %q; example rows:", e.Table, len(e.Rows), e.Column)
	for i, r := range e.Rows {
		if i == maxExampleRows {
			b.WriteString(" ...")
			break
		}
		fmt.Fprintf(&b, " [line %d player_id=%s %s=%q]", r.Line, r.PlayerID, e.Column, r.Value)
	}
	return b.String()
}

// Is matches ErrDateParse.
func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }
