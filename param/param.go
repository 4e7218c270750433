// Package param is a small named-parameter framework for instrument
// front panels: a Param couples a get/set pair with a validator, and a
// Set keeps an insertion-ordered registry of them, so a controller can
// expose its knobs under stable names.
package param

import (
	"github.com/pkg/errors"
)

// Sentinel kinds for the whole module, checked with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// Param is one named, validated value with caller-supplied get/set
// commands. A Param without a SetCmd is read-only.
type Param struct {
	Name   string
	Label  string
	Unit   string
	Vals   Validator
	GetCmd func() (interface{}, error)
	SetCmd func(value interface{}) error
}

func (p *Param) Get() (interface{}, error) {
	if p.GetCmd == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "parameter %s is not gettable", p.Name)
	}
	return p.GetCmd()
}

// Set validates value before dispatching to the set command, so a bad
// value never reaches the instrument.
func (p *Param) Set(value interface{}) error {
	if p.SetCmd == nil {
		return errors.Wrapf(ErrInvalidArgument, "parameter %s is not settable", p.Name)
	}
	if p.Vals != nil {
		if err := p.Vals.Validate(value); err != nil {
			return errors.Wrapf(err, "parameter %s", p.Name)
		}
	}
	return p.SetCmd(value)
}

// Set is an insertion-ordered registry of parameters keyed by name.
type Set struct {
	names  []string
	params map[string]*Param
}

func NewSet() *Set {
	return &Set{params: make(map[string]*Param)}
}

func (s *Set) Add(p *Param) error {
	if len(p.Name) == 0 {
		return errors.Wrap(ErrInvalidArgument, "parameter without a name")
	}
	if _, exists := s.params[p.Name]; exists {
		return errors.Wrapf(ErrInvalidArgument, "parameter %s already registered", p.Name)
	}
	s.names = append(s.names, p.Name)
	s.params[p.Name] = p
	return nil
}

// Replace rebinds an existing name to a new parameter, keeping its
// position in the order, or appends when the name is new.
func (s *Set) Replace(p *Param) {
	if _, exists := s.params[p.Name]; !exists {
		s.names = append(s.names, p.Name)
	}
	s.params[p.Name] = p
}

func (s *Set) Get(name string) (*Param, error) {
	p, found := s.params[name]
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "parameter %s", name)
	}
	return p, nil
}

// Names returns the registered names in registration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

func (s *Set) Len() int {
	return len(s.names)
}
