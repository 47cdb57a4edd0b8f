// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwgen

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Symbols is a table of named constants.
//
// A Symbols table is owned by a single generation run and must not be used
// concurrently.
//
type Symbols struct {
	m     map[string]Literal
	names []string // first-bind order
	log   *slog.Logger
}

// NewSymbols returns an empty symbol table. If logger is nil, slog.Default()
// is used.
//
func NewSymbols(logger *slog.Logger) *Symbols {
	if logger == nil {
		logger = slog.Default()
	}
	return &Symbols{m: make(map[string]Literal), log: logger}
}

// Bind parses tok and binds it to name. Binding an existing name replaces its
// value.
//
func (s *Symbols) Bind(name, tok string) error {
	if name == "" {
		return errors.New("empty constant name")
	}
	l, err := ParseLiteral(tok)
	if err != nil {
		return errors.Wrapf(err, "bind %s", name)
	}
	if old, ok := s.m[name]; ok {
		s.log.Debug("constant rebound", "name", name, "old", old.Token, "new", tok)
	} else {
		s.names = append(s.names, name)
	}
	s.m[name] = l
	return nil
}

// Lookup returns the literal bound to name.
//
func (s *Symbols) Lookup(name string) (Literal, error) {
	l, ok := s.m[name]
	if !ok {
		return l, errors.Wrap(ErrUnresolvedConstant, name)
	}
	return l, nil
}

// Value returns the numeric value of the constant name. Symbolic literals are
// followed through the table until a numeric one is found.
//
func (s *Symbols) Value(name string) (uint64, error) {
	seen := make(map[string]bool)
	n := name
	for {
		if seen[n] {
			return 0, errors.Wrapf(ErrUnresolvedConstant, "%s: reference cycle", name)
		}
		seen[n] = true
		l, err := s.Lookup(n)
		if err != nil {
			if n != name {
				return 0, errors.Wrapf(err, "resolving %s", name)
			}
			return 0, err
		}
		if !l.Symbolic {
			return l.Value, nil
		}
		n = l.Token
	}
}

// Resolve returns the value of tok, which is either a numeric literal or the
// name of a bound constant.
//
func (s *Symbols) Resolve(tok string) (uint64, error) {
	l, err := ParseLiteral(tok)
	if err != nil {
		return 0, err
	}
	if !l.Symbolic {
		return l.Value, nil
	}
	return s.Value(tok)
}

// Names returns the bound names in the order they were first bound.
//
func (s *Symbols) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of bound constants.
//
func (s *Symbols) Len() int { return len(s.names) }
