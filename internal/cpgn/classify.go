package cpgn

import "fmt"

// classify.go implements spec §4.8 step 5: deriving a believed game result
// from the sequence of per-move scores, independent of the game's declared
// result, so the importer can reject games whose play doesn't support the
// label attached to them.

// Conventional centipawn scale; PawnValue anchors the GOOD/OK thresholds the
// same way a typical evaluation function does.
const PawnValue = 100

const (
	// GoodScore and OkScore are the two score magnitudes that move a
	// classifier's per-color weight, per spec §4.8.
	GoodScore = 3 * PawnValue
	OkScore   = GoodScore / 2

	// DrawScoreBound is the |score| ceiling below which a move pushes the
	// draw weight instead of either color's win weight.
	DrawScoreBound = 50

	// ValueTBWinInMaxPly marks scores that are themselves already a
	// tablebase/mate-range decision, not a heuristic nudge.
	ValueTBWinInMaxPly = 15000

	// MinGamePlies is the shortest game the importer will accept.
	MinGamePlies = 16

	// WinWeightThreshold / DrawWeightThreshold gate game acceptance once a
	// winner (or draw) has been derived, per spec §4.8 step 7.
	WinWeightThreshold  = 16
	DrawWeightThreshold = 8
)

// Result is a game outcome, from White's point of view.
type Result int

const (
	ResultWhite Result = iota
	ResultBlack
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWhite:
		return "w"
	case ResultBlack:
		return "b"
	case ResultDraw:
		return "d"
	default:
		return "?"
	}
}

// ParseResultCode maps a line's result field to a Result.
func ParseResultCode(code string) (Result, error) {
	switch code {
	case "w":
		return ResultWhite, nil
	case "b":
		return ResultBlack, nil
	case "d":
		return ResultDraw, nil
	}
	return 0, fmt.Errorf("cpgn: unknown result code %q", code)
}

// classifier accumulates per-color result weight across one game's moves,
// per spec §4.8 step 5.
type classifier struct {
	weight         [2]int // index 0 = white, 1 = black
	drawWeight     int
	tinyDrawWeight int
	drawFlag       bool
	decided        Result
	decidedByTB    bool
	contradiction  bool
}

// observe folds one move's (mover color, score) into the classifier. color
// is 0 for white, 1 for black — the color that played the move the score
// is attached to.
func (c *classifier) observe(color int, score int32, isDraw bool) {
	other := 1 - color
	abs := score
	if abs < 0 {
		abs = -abs
	}

	if abs >= ValueTBWinInMaxPly {
		// score is from the mover's (color's) point of view: a non-negative
		// score favors the mover, negative favors the opponent.
		winner := ResultBlack
		favorsMover := score >= 0
		if (color == 0) == favorsMover {
			winner = ResultWhite
		}
		if c.decidedByTB && c.decided != winner {
			c.contradiction = true
		}
		c.decided = winner
		c.decidedByTB = true
	}

	winner, loser := color, other
	if score < 0 {
		winner, loser = other, color
	}

	switch {
	case abs >= GoodScore:
		c.weight[winner] += 4
		c.weight[loser] = 0
	case abs >= OkScore:
		c.weight[winner] += 2
		c.weight[loser] /= 2
	case abs <= DrawScoreBound:
		c.drawWeight++
	default:
		// Between DrawScoreBound and OkScore: too decisive to call a clean
		// draw signal, too quiet to move a color's win weight. A tiny push:
		// believedResult counts two of these as one toward DrawWeightThreshold.
		c.tinyDrawWeight++
	}

	if isDraw {
		c.drawFlag = true
	}
}

// believedResult resolves the classifier's accumulated weights into a single
// Result plus whether the evidence is strong enough, per spec §4.8 step 7.
func (c *classifier) believedResult() (result Result, sufficientEvidence bool) {
	if c.decidedByTB {
		return c.decided, true
	}
	effectiveDrawWeight := c.drawWeight + c.tinyDrawWeight/2
	switch {
	case c.weight[0] >= WinWeightThreshold && c.weight[0] > c.weight[1]:
		return ResultWhite, true
	case c.weight[1] >= WinWeightThreshold && c.weight[1] > c.weight[0]:
		return ResultBlack, true
	case effectiveDrawWeight >= DrawWeightThreshold || c.drawFlag:
		return ResultDraw, true
	default:
		return ResultDraw, false
	}
}
