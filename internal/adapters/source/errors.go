package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is the sentinel kind of SchemaError.
var ErrSchema = errors.New("schema mismatch")

// SchemaError names the required columns a table is missing.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
