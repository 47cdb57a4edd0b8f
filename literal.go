// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwgen

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Literal is a parsed constant token.
//
// Numeric literals use the Verilog syntax:
//
//	[<width>']<base><digits>	// 3'd4, 8'hFF, 'b101
//	<digits>			// 42
//
// where base is one of d, h or b (decimal when omitted). Other base letters,
// upper case included, are rejected. The width is recorded but does not bound
// the value: 3'd9 is 9. Any token that does not start with a digit or a quote
// is a symbolic literal: Symbolic is set and Value is 0.
//
type Literal struct {
	Token    string // token as written
	Width    int    // declared width, 0 if none
	Value    uint64
	Symbolic bool
}

// String returns the literal's token.
//
func (l Literal) String() string { return l.Token }

// ParseLiteral parses a literal token.
//
func ParseLiteral(tok string) (Literal, error) {
	l := Literal{Token: tok}
	if tok == "" {
		return l, errors.Wrap(ErrInvalidLiteralFormat, "empty literal")
	}

	var num string
	switch c := tok[0]; {
	case c == '\'':
		num = tok[1:]
	case '0' <= c && c <= '9':
		br := strings.IndexByte(tok, '\'')
		if br < 0 {
			num = tok
			break
		}
		w, err := strconv.Atoi(tok[:br])
		if err != nil || w < 1 {
			return l, errors.Wrapf(ErrInvalidLiteralFormat, "%q: bad width", tok)
		}
		l.Width = w
		num = tok[br+1:]
	default:
		l.Symbolic = true
		return l, nil
	}

	if num == "" {
		return l, errors.Wrapf(ErrInvalidLiteralFormat, "%q: missing value", tok)
	}
	base := 10
	switch num[0] {
	case 'd':
		num = num[1:]
	case 'h':
		base = 16
		num = num[1:]
	case 'b':
		base = 2
		num = num[1:]
	default:
		if num[0] < '0' || num[0] > '9' {
			return l, errors.Wrapf(ErrInvalidLiteralFormat, "%q: unknown base %q", tok, num[0])
		}
	}
	num = strings.Replace(num, "_", "", -1)
	v, err := strconv.ParseUint(num, base, 64)
	if err != nil {
		return l, errors.Wrapf(ErrInvalidLiteralFormat, "%q: bad base %d value", tok, base)
	}
	l.Value = v
	return l, nil
}
