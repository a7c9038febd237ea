package cpgn

import (
	"fmt"
	"testing"

	"github.com/sugarchess/experience/internal/fakeengine"
)

func longGameFavoringWhite() RawGame {
	tokens := make([]string, 0, 16)
	for i := 0; i < 16; i++ {
		if i%2 == 0 {
			// White to move: a strong, decisive score in White's favor.
			tokens = append(tokens, fmt.Sprintf("m%da:500:10", i))
		} else {
			// Black to move: a quiet, inconclusive score.
			tokens = append(tokens, fmt.Sprintf("m%db:20:10", i))
		}
	}
	return RawGame{FEN: "startpos", Result: "w", MoveTokens: tokens}
}

func TestImportGameAcceptsSupportedResult(t *testing.T) {
	result, err := ImportGame(fakeengine.Oracle{}, longGameFavoringWhite(), Limits{MinDepth: 1, MaxDepth: 32, MaxValue: 10000})
	if err != nil {
		t.Fatalf("ImportGame: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("expected acceptance, got rejection: %s", result.Reason)
	}
	if len(result.Staged) != 16 {
		t.Fatalf("staged = %d, want 16 (every move had score+depth in range)", len(result.Staged))
	}
}

func TestImportGameRejectsMismatchedResult(t *testing.T) {
	game := longGameFavoringWhite()
	game.Result = "b" // declared result contradicts the score evidence
	result, err := ImportGame(fakeengine.Oracle{}, game, Limits{MinDepth: 1, MaxDepth: 32, MaxValue: 10000})
	if err != nil {
		t.Fatalf("ImportGame: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected rejection for mismatched declared result")
	}
}

func TestImportGameRejectsShortGames(t *testing.T) {
	game := RawGame{FEN: "startpos", Result: "d", MoveTokens: []string{"e2e4", "e7e5"}}
	result, err := ImportGame(fakeengine.Oracle{}, game, Limits{MinDepth: 1, MaxDepth: 32, MaxValue: 10000})
	if err != nil {
		t.Fatalf("ImportGame: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected rejection for a game shorter than MinGamePlies")
	}
}

func TestImportGameHonorsDepthAndValueLimits(t *testing.T) {
	game := longGameFavoringWhite()
	// maxDepth below every move's depth: nothing should be staged, even
	// though the game is otherwise accepted.
	result, err := ImportGame(fakeengine.Oracle{}, game, Limits{MinDepth: 1, MaxDepth: 2, MaxValue: 10000})
	if err != nil {
		t.Fatalf("ImportGame: %v", err)
	}
	if !result.Accepted {
		t.Fatalf("expected acceptance, got rejection: %s", result.Reason)
	}
	if len(result.Staged) != 0 {
		t.Fatalf("staged = %d, want 0 (all moves exceed maxDepth=2)", len(result.Staged))
	}
}

func TestImportGameRejectsEmptyMoveToken(t *testing.T) {
	game := RawGame{FEN: "startpos", Result: "d", MoveTokens: []string{""}}
	result, err := ImportGame(fakeengine.Oracle{}, game, Limits{MinDepth: 1, MaxDepth: 32, MaxValue: 10000})
	if err != nil {
		t.Fatalf("ImportGame: %v", err)
	}
	if result.Accepted {
		t.Fatal("an empty move token should fail token parsing and reject the game")
	}
}
