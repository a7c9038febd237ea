package cpgn

import "testing"

func TestClassifierAccumulatesDecisiveScores(t *testing.T) {
	c := &classifier{}
	for i := 0; i < 5; i++ {
		c.observe(0, GoodScore, false) // White mover, strongly in White's favor
	}
	result, sufficient := c.believedResult()
	if !sufficient || result != ResultWhite {
		t.Fatalf("believedResult = (%v, %v), want (White, true)", result, sufficient)
	}
}

func TestClassifierAccumulatesFromLosingSidesNegativeScores(t *testing.T) {
	c := &classifier{}
	for i := 0; i < 5; i++ {
		// Black mover, score deeply negative from Black's own point of view:
		// this favors White, the eventual winner, on every alternating ply.
		c.observe(1, -GoodScore, false)
	}
	result, sufficient := c.believedResult()
	if !sufficient || result != ResultWhite {
		t.Fatalf("believedResult = (%v, %v), want (White, true)", result, sufficient)
	}
}

func TestClassifierDrawWeightAccumulates(t *testing.T) {
	c := &classifier{}
	for i := 0; i < DrawWeightThreshold; i++ {
		c.observe(i%2, 10, false) // small scores from both sides
	}
	result, sufficient := c.believedResult()
	if !sufficient || result != ResultDraw {
		t.Fatalf("believedResult = (%v, %v), want (Draw, true)", result, sufficient)
	}
}

func TestClassifierInsufficientEvidence(t *testing.T) {
	c := &classifier{}
	c.observe(0, 60, false) // above DrawScoreBound but below OkScore: a "tiny push"
	_, sufficient := c.believedResult()
	if sufficient {
		t.Fatal("a single marginal observation should not be sufficient evidence")
	}
}

func TestClassifierTBWinContradiction(t *testing.T) {
	c := &classifier{}
	c.observe(0, ValueTBWinInMaxPly, false)  // White mover, decisive for White
	c.observe(1, ValueTBWinInMaxPly, false)  // Black mover, decisive for Black — contradiction
	if !c.contradiction {
		t.Fatal("expected contradiction between two opposing TB-range decisions")
	}
}

func TestParseResultCode(t *testing.T) {
	cases := map[string]Result{"w": ResultWhite, "b": ResultBlack, "d": ResultDraw}
	for code, want := range cases {
		got, err := ParseResultCode(code)
		if err != nil || got != want {
			t.Errorf("ParseResultCode(%q) = (%v, %v), want (%v, nil)", code, got, err, want)
		}
	}
	if _, err := ParseResultCode("x"); err == nil {
		t.Error("expected error for unknown result code")
	}
}
