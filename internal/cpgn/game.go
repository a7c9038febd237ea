package cpgn

// game.go implements spec §4.8 steps 1-7: turning one RawGame into either a
// rejected line (with a reason) or a set of staged observations ready to be
// written to an output file.

import (
	"fmt"

	"github.com/sugarchess/experience/pkg/engineiface"
	"github.com/sugarchess/experience/pkg/experience"
)

// Limits bounds which moves are staged, per spec §4.8 step 4: "depth ∈
// [max(minDepth, MinDepth), maxDepth] and |score| ≤ maxValue".
type Limits struct {
	MinDepth int32
	MaxDepth int32
	MaxValue int32
}

// StagedMove is one validated (position, move, score, depth) observation
// pulled out of an accepted game.
type StagedMove struct {
	Key   engineiface.Key
	Move  engineiface.Move
	Value int32
	Depth int32
}

// GameResult is the outcome of importing one game line.
type GameResult struct {
	Accepted bool
	Declared Result
	Staged   []StagedMove
	Reason   string // set when Accepted is false
}

// ImportGame parses, resolves, classifies and validates one game, per spec
// §4.8. A returned error means the line itself was too malformed to
// process (bad FEN, bad result code); a rejected-but-well-formed game is
// reported via GameResult.Reason with a nil error.
func ImportGame(oracle engineiface.MoveOracle, raw RawGame, limits Limits) (GameResult, error) {
	declared, err := ParseResultCode(raw.Result)
	if err != nil {
		return GameResult{}, err
	}
	result := GameResult{Declared: declared}

	pos, err := oracle.ParseFEN(raw.FEN)
	if err != nil {
		return GameResult{}, fmt.Errorf("cpgn: parse fen %q: %w", raw.FEN, err)
	}

	effectiveMinDepth := limits.MinDepth
	if experience.MinDepth > effectiveMinDepth {
		effectiveMinDepth = experience.MinDepth
	}

	cls := &classifier{}
	staged := make([]StagedMove, 0, len(raw.MoveTokens))
	plies := 0
	applied := 0

	for _, rawTok := range raw.MoveTokens {
		tok, err := ParseMoveToken(rawTok)
		if err != nil {
			undoAll(pos, applied)
			result.Reason = err.Error()
			return result, nil
		}

		move, ok := oracle.ResolveMove(pos, tok.Text)
		if !ok {
			undoAll(pos, applied)
			result.Reason = fmt.Sprintf("illegal move %q at ply %d", tok.Text, plies)
			return result, nil
		}

		key := pos.Key()
		color := pos.SideToMove()

		if tok.HasEval &&
			tok.Depth >= effectiveMinDepth && tok.Depth <= limits.MaxDepth &&
			absI32(tok.Score) <= limits.MaxValue {
			staged = append(staged, StagedMove{Key: key, Move: move, Value: tok.Score, Depth: tok.Depth})
		}

		pos.DoMove(move)
		applied++
		plies++

		if tok.HasEval {
			cls.observe(color, tok.Score, pos.IsDraw())
		}
	}
	undoAll(pos, applied)

	if plies < MinGamePlies {
		result.Reason = fmt.Sprintf("game too short: %d plies < %d", plies, MinGamePlies)
		return result, nil
	}
	if cls.contradiction {
		result.Reason = "contradictory tablebase/mate signals across moves"
		return result, nil
	}

	believed, sufficient := cls.believedResult()
	if !sufficient {
		result.Reason = "insufficient evidence for any result"
		return result, nil
	}
	if believed != declared {
		result.Reason = fmt.Sprintf("believed result %s does not match declared result %s", believed, declared)
		return result, nil
	}

	result.Accepted = true
	result.Staged = staged
	return result, nil
}

func undoAll(pos engineiface.Position, n int) {
	for ; n > 0; n-- {
		pos.UndoMove()
	}
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
