// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/encoding/wkt"
)

// Parse parses a textual filter expression into an Expr tree.
//
// The grammar is OData-flavored:
//
//	procedure/name eq 'Thermometer' and value ge 4.5
//	tm_during(2020-01-01T00:00:00Z/2020-01-10T00:00:00Z)
//	st_within('POLYGON((0 0,1 0,1 1,0 1,0 0))') or not (value lt 0)
//	between(value, 1, 5)
func Parse(raw string) (Expr, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("unexpected trailing token %q", p.peek())
	}
	return expr, nil
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(raw string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case c == ',':
			tokens = append(tokens, token{tokComma, ","})
			i++
		case c == '\'':
			text, next, err := scanString(raw, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokString, text})
			i = next
		case isWordChar(c):
			start := i
			for i < len(raw) && isWordChar(raw[i]) {
				i++
			}
			tokens = append(tokens, token{tokWord, raw[start:i]})
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
		}
	}
	return tokens, nil
}

// scanString reads a single-quoted string with '' as the escape for a quote.
func scanString(raw string, start int) (string, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(raw) {
		if raw[i] == '\'' {
			if i+1 < len(raw) && raw[i+1] == '\'' {
				sb.WriteByte('\'')
				i += 2
				continue
			}
			return sb.String(), i + 1, nil
		}
		sb.WriteByte(raw[i])
		i++
	}
	return "", 0, fmt.Errorf("unterminated string starting at offset %d", start)
}

// isWordChar covers identifiers, paths (procedure/name), numbers and bare
// ISO-8601 instants and intervals.
func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == ':' || c == '.' || c == '+' || c == '/':
		return true
	}
	return false
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() string {
	if p.done() {
		return "<eof>"
	}
	return p.tokens[p.pos].text
}

func (p *parser) next() (token, error) {
	if p.done() {
		return token{}, fmt.Errorf("unexpected end of filter expression")
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t, err := p.next()
	if err != nil {
		return token{}, err
	}
	if t.kind != kind {
		return token{}, fmt.Errorf("unexpected token %q", t.text)
	}
	return t, nil
}

func (p *parser) matchWord(word string) bool {
	if p.done() || p.tokens[p.pos].kind != tokWord {
		return false
	}
	if !strings.EqualFold(p.tokens[p.pos].text, word) {
		return false
	}
	p.pos++
	return true
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	subs := []Expr{left}
	for p.matchWord("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		subs = append(subs, right)
	}
	if len(subs) == 1 {
		return left, nil
	}
	return Logical{Op: LogicOr, Subs: subs}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	subs := []Expr{left}
	for p.matchWord("and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		subs = append(subs, right)
	}
	if len(subs) == 1 {
		return left, nil
	}
	return Logical{Op: LogicAnd, Subs: subs}, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.matchWord("not") {
		sub, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Logical{Op: LogicNot, Subs: []Expr{sub}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	if !p.done() && p.tokens[p.pos].kind == tokLParen {
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	}

	head, err := p.expect(tokWord)
	if err != nil {
		return nil, err
	}

	// Function-style node: spatial (st_*), temporal (tm_*) or between().
	if !p.done() && p.tokens[p.pos].kind == tokLParen {
		return p.parseCall(head.text)
	}

	return p.parseComparison(head.text)
}

func (p *parser) parseComparison(ref string) (Expr, error) {
	opTok, err := p.expect(tokWord)
	if err != nil {
		return nil, err
	}
	op, ok := compOps[strings.ToLower(opTok.text)]
	if !ok {
		return nil, fmt.Errorf("unknown comparison operator %q", opTok.text)
	}

	lit, err := p.next()
	if err != nil {
		return nil, err
	}
	value, err := literalValue(lit)
	if err != nil {
		return nil, err
	}
	return Comparison{Ref: ref, Op: op, Value: value}, nil
}

var compOps = map[string]CompOp{
	"eq":   CompEq,
	"ne":   CompNe,
	"gt":   CompGt,
	"ge":   CompGe,
	"lt":   CompLt,
	"le":   CompLe,
	"like": CompLike,
}

func (p *parser) parseCall(name string) (Expr, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var args []token
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokRParen && len(args) == 0 {
			break
		}
		if t.kind != tokWord && t.kind != tokString {
			return nil, fmt.Errorf("unexpected token %q in %s()", t.text, name)
		}
		args = append(args, t)

		sep, err := p.next()
		if err != nil {
			return nil, err
		}
		if sep.kind == tokRParen {
			break
		}
		if sep.kind != tokComma {
			return nil, fmt.Errorf("unexpected token %q in %s()", sep.text, name)
		}
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "st_"):
		return buildSpatialCall(lower, args)
	case strings.HasPrefix(lower, "tm_"):
		return buildTemporalCall(lower, args)
	case lower == "between":
		return buildBetweenCall(args)
	}
	return nil, fmt.Errorf("unknown function %q", name)
}

var spatialOps = map[string]SpatialOp{
	"st_bbox":       SpBBox,
	"st_contains":   SpContains,
	"st_crosses":    SpCrosses,
	"st_disjoint":   SpDisjoint,
	"st_equals":     SpEquals,
	"st_intersects": SpIntersects,
	"st_overlaps":   SpOverlaps,
	"st_touches":    SpTouches,
	"st_within":     SpWithin,
	"st_beyond":     SpBeyond,
	"st_dwithin":    SpDWithin,
}

func buildSpatialCall(name string, args []token) (Expr, error) {
	op, ok := spatialOps[name]
	if !ok {
		return nil, fmt.Errorf("unknown spatial function %q", name)
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("%s() requires a geometry argument", name)
	}

	geom, err := wkt.Unmarshal(args[0].text)
	if err != nil {
		return nil, fmt.Errorf("%s(): invalid WKT geometry: %w", name, err)
	}

	expr := SpatialExpr{Op: op, Geometry: geom}
	if op == SpBeyond || op == SpDWithin {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s() requires a distance argument", name)
		}
		dist, err := strconv.ParseFloat(args[1].text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s(): invalid distance %q", name, args[1].text)
		}
		expr.Distance = dist
	} else if len(args) != 1 {
		return nil, fmt.Errorf("%s() takes exactly one argument", name)
	}
	return expr, nil
}

var temporalOps = map[string]TemporalOp{
	"tm_after":        TmAfter,
	"tm_before":       TmBefore,
	"tm_begins":       TmBegins,
	"tm_begunby":      TmBegunBy,
	"tm_contains":     TmContains,
	"tm_during":       TmDuring,
	"tm_ends":         TmEnds,
	"tm_endedby":      TmEndedBy,
	"tm_equals":       TmEquals,
	"tm_meets":        TmMeets,
	"tm_metby":        TmMetBy,
	"tm_overlaps":     TmOverlaps,
	"tm_overlappedby": TmOverlappedBy,
}

func buildTemporalCall(name string, args []token) (Expr, error) {
	op, ok := temporalOps[name]
	if !ok {
		return nil, fmt.Errorf("unknown temporal function %q", name)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%s() takes exactly one time argument", name)
	}

	raw := args[0].text
	if strings.Contains(raw, "/") {
		parts := strings.SplitN(raw, "/", 2)
		begin, err := parseTime(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%s(): %w", name, err)
		}
		end, err := parseTime(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%s(): %w", name, err)
		}
		if end.Before(begin) {
			return nil, fmt.Errorf("%s(): period end before start", name)
		}
		return TemporalExpr{Op: op, Begin: begin, End: end}, nil
	}

	instant, err := parseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%s(): %w", name, err)
	}
	return TemporalExpr{Op: op, Begin: instant, End: instant}, nil
}

func buildBetweenCall(args []token) (Expr, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("between() takes (ref, lower, upper)")
	}
	lower, err := literalValue(args[1])
	if err != nil {
		return nil, err
	}
	upper, err := literalValue(args[2])
	if err != nil {
		return nil, err
	}
	return BetweenExpr{Ref: args[0].text, Lower: lower, Upper: upper}, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", raw)
}

// literalValue converts a literal token to its typed value. Quoted strings
// stay strings; bare words are tried as null, boolean, number and datetime.
func literalValue(t token) (interface{}, error) {
	if t.kind == tokString {
		return t.text, nil
	}
	lower := strings.ToLower(t.text)
	switch lower {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.ParseFloat(t.text, 64); err == nil {
		return n, nil
	}
	if ts, err := parseTime(t.text); err == nil {
		return ts, nil
	}
	return nil, fmt.Errorf("invalid literal %q", t.text)
}
