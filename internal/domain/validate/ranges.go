// Package validate is the pipeline's range gate: it rejects cleaned rows whose
// values fall outside their domain bounds instead of coercing them.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/loadmon/internal/domain/model"
)

// ErrRange is the sentinel kind of RangeError.
var ErrRange = errors.New("value out of range")

// RangeError describes the first value found outside its bound.
type RangeError struct {
	Table    string
	Column   string
	Bound    string
	Line     int
	PlayerID string
	Value    float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s.%s should be %s (line %d, player_id=%s, value=%g)",
		e.Table, e.Column, e.Bound, e.Line, e.PlayerID, e.Value)
}

// Is matches ErrRange.
func (e *RangeError) Is(target error) bool { return target == ErrRange }

// RangeValidator checks session and wellness records against the bounds
// declared in their validate struct tags. Missing values are exempt.
type RangeValidator struct {
	v      *validator.Validate
	bounds map[string]string
}

// New builds a RangeValidator that reports fields by their CSV column name.
func New() *RangeValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("csv"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	bounds := make(map[string]string)
	describeBounds(reflect.TypeOf(model.SessionRecord{}), "sessions", bounds)
	describeBounds(reflect.TypeOf(model.WellnessRecord{}), "wellness", bounds)
	return &RangeValidator{v: v, bounds: bounds}
}

// Validate returns a *RangeError for the first out-of-range value, sessions
// first, or nil when every non-missing value is within bounds.
func (rv *RangeValidator) Validate(sessions []model.SessionRecord, wellness []model.WellnessRecord) error {
	for _, s := range sessions {
		if err := rv.v.Struct(s); err != nil {
			return rv.rangeError(err, "sessions", s.Line, s.PlayerID, s.Value)
		}
	}
	for _, w := range wellness {
		if err := rv.v.Struct(w); err != nil {
			return rv.rangeError(err, "wellness", w.Line, w.PlayerID, w.Value)
		}
	}
	return nil
}

func (rv *RangeValidator) rangeError(err error, table string, line int, playerID string, lookup func(string) (*float64, bool)) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Errorf("validate %s: %w", table, err)
	}
	fe := ve[0]
	re := &RangeError{
		Table:    table,
		Column:   fe.Field(),
		Bound:    rv.bounds[table+"."+fe.Field()],
		Line:     line,
		PlayerID: playerID,
	}
	if re.Bound == "" {
		re.Bound = fe.Tag() + " " + fe.Param()
	}
	if v, ok := lookup(fe.Field()); ok && v != nil {
		re.Value = *v
	}
	return re
}

// describeBounds renders the gte/lte tags of t as human-readable bounds keyed
// by "table.column".
func describeBounds(t reflect.Type, table string, out map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" {
			continue
		}
		var lo, hi string
		for _, part := range strings.Split(tag, ",") {
			switch {
			case strings.HasPrefix(part, "gte="):
				lo = strings.TrimPrefix(part, "gte=")
			case strings.HasPrefix(part, "lte="):
				hi = strings.TrimPrefix(part, "lte=")
			}
		}
		key := table + "." + f.Tag.Get("csv")
		switch {
		case lo != "" && hi != "":
			out[key] = "in [" + lo + ", " + hi + "]"
		case lo != "":
			out[key] = ">= " + lo
		case hi != "":
			out[key] = "<= " + hi
		}
	}
}
