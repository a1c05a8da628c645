// Observatus - Sensor Observation Time-Series Query and Assembly
// Copyright 2026 The Observatus Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/observatus/observatus

package filter

import (
	"fmt"
	"time"

	"github.com/observatus/observatus/internal/database/query"
)

// generateTemporal translates an interval-algebra operator into comparisons
// on the target's sampling period columns. The filter operand is normalized
// to a period (ps, pe); an instant is the degenerate period ps == pe. The
// row's own period is (start, end), where instant observations carry
// start == end.
func (g Generator) generateTemporal(node TemporalExpr) query.Predicate {
	if g.Target.TimeStartColumn == "" || g.Target.TimeEndColumn == "" {
		return g.unsupported("temporal filter on a target without sampling time")
	}
	if node.End.Before(node.Begin) {
		return g.unsupported("temporal operand with end before begin")
	}

	start := g.Target.TimeStartColumn
	end := g.Target.TimeEndColumn
	ps, pe := node.Begin, node.End

	switch node.Op {
	case TmBefore:
		// The row's period lies strictly before the operand.
		return timeCmp(end, query.OpLt, ps)
	case TmAfter:
		return timeCmp(start, query.OpGt, pe)
	case TmMeets:
		return timeCmp(end, query.OpEq, ps)
	case TmMetBy:
		return timeCmp(start, query.OpEq, pe)
	case TmOverlaps:
		return query.Conj(
			timeCmp(start, query.OpLt, ps),
			timeCmp(end, query.OpGt, ps),
			timeCmp(end, query.OpLt, pe),
		)
	case TmOverlappedBy:
		return query.Conj(
			timeCmp(start, query.OpGt, ps),
			timeCmp(start, query.OpLt, pe),
			timeCmp(end, query.OpGt, pe),
		)
	case TmBegins:
		return query.Conj(
			timeCmp(start, query.OpEq, ps),
			timeCmp(end, query.OpLt, pe),
		)
	case TmBegunBy:
		return query.Conj(
			timeCmp(start, query.OpEq, ps),
			timeCmp(end, query.OpGt, pe),
		)
	case TmDuring:
		return query.Conj(
			timeCmp(start, query.OpGt, ps),
			timeCmp(end, query.OpLt, pe),
		)
	case TmContains:
		return query.Conj(
			timeCmp(start, query.OpLt, ps),
			timeCmp(end, query.OpGt, pe),
		)
	case TmEnds:
		return query.Conj(
			timeCmp(end, query.OpEq, pe),
			timeCmp(start, query.OpGt, ps),
		)
	case TmEndedBy:
		return query.Conj(
			timeCmp(end, query.OpEq, pe),
			timeCmp(start, query.OpLt, ps),
		)
	case TmEquals:
		return query.Conj(
			timeCmp(start, query.OpEq, ps),
			timeCmp(end, query.OpEq, pe),
		)
	default:
		return g.unsupported(fmt.Sprintf("unknown temporal operator %q", node.Op))
	}
}

func timeCmp(column string, op query.CmpOp, t time.Time) query.Predicate {
	return query.Cmp{Column: column, Op: op, Value: t.UTC()}
}
