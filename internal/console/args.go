// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package console

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gad-lang/dynobj"
)

var errUnterminated = errors.New("unterminated quoted string")

// splitArgs splits a command line on spaces. Double quoted words keep their
// quotes so parseLiteral can tell them from bare words.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		inWord  bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			cur.WriteRune(r)
			quoted = !quoted
			inWord = true
		case !quoted && (r == ' ' || r == '\t'):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quoted {
		return nil, errUnterminated
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

// parseLiteral converts a command word to a value: "quoted" strings,
// integers, floats, decimals with a d suffix (1.5d), true, false, nil.
// Other words are strings.
func parseLiteral(s string) (dynobj.Object, error) {
	switch s {
	case "true":
		return dynobj.True, nil
	case "false":
		return dynobj.False, nil
	case "nil":
		return dynobj.Nil, nil
	}

	if strings.HasPrefix(s, `"`) {
		v, err := strconv.Unquote(s)
		if err != nil {
			return nil, err
		}
		return dynobj.Str(v), nil
	}

	if !looksNumeric(s) {
		return dynobj.Str(s), nil
	}

	if num, ok := strings.CutSuffix(s, "d"); ok {
		if v, err := dynobj.DecimalFromString(dynobj.Str(num)); err == nil {
			return v, nil
		}
		return dynobj.Str(s), nil
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return dynobj.Int(v), nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return dynobj.Float(v), nil
	}
	return dynobj.Str(s), nil
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.')
}
