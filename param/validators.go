package param

import (
	"math"

	"github.com/pkg/errors"
)

// Validator rejects values a parameter must not accept.
type Validator interface {
	Validate(value interface{}) error
}

// Numbers accepts any numeric value within [Min, Max].
type Numbers struct {
	Min float64
	Max float64
}

// AnyNumber is an unbounded Numbers validator.
func AnyNumber() Numbers {
	return Numbers{Min: math.Inf(-1), Max: math.Inf(1)}
}

func (n Numbers) Validate(value interface{}) error {
	if _, isBool := value.(bool); isBool {
		return errors.Wrapf(ErrInvalidArgument, "%v is not a number", value)
	}
	f, ok := AsFloat(value)
	if !ok {
		return errors.Wrapf(ErrInvalidArgument, "%v is not a number", value)
	}
	if f < n.Min || f > n.Max {
		return errors.Wrapf(ErrInvalidArgument, "%v outside range [%v, %v]", f, n.Min, n.Max)
	}
	return nil
}

// Bools accepts true/false only.
type Bools struct{}

func (Bools) Validate(value interface{}) error {
	if _, ok := value.(bool); !ok {
		return errors.Wrapf(ErrInvalidArgument, "%v is not a bool", value)
	}
	return nil
}

// Enum accepts members of a fixed value set.
type Enum struct {
	values []interface{}
}

func NewEnum(values ...interface{}) Enum {
	return Enum{values: values}
}

func (e Enum) Validate(value interface{}) error {
	for _, v := range e.values {
		if v == value {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidArgument, "%v not in %v", value, e.values)
}

// MultiType accepts a value passing any one of its validators.
type MultiType []Validator

func NewMultiType(vs ...Validator) MultiType {
	return MultiType(vs)
}

func (m MultiType) Validate(value interface{}) error {
	for _, v := range m {
		if v.Validate(value) == nil {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidArgument, "%v rejected by all validators", value)
}

// AsFloat converts the numeric types a parameter value may arrive as.
// Bools convert to 1/0, matching how a two-level output is driven.
func AsFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
