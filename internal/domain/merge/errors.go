package merge

import (
	"errors"
	"fmt"
)

// ErrMergeIntegrity is the sentinel kind of IntegrityError.
var ErrMergeIntegrity = errors.New("merge integrity violation")

// IntegrityError reports a key that broke a join cardinality contract.
type IntegrityError struct {
	Table  string
	Key    string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("merge: %s %s: %s", e.Table, e.Reason, e.Key)
}

// Is matches ErrMergeIntegrity.
func (e *IntegrityError) Is(target error) bool { return target == ErrMergeIntegrity }
