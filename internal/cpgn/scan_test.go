package cpgn

import "testing"

func TestScanLineParsesFields(t *testing.T) {
	line := "{ rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1, w, e2e4:34:8, e7e5 }"
	raw, err := ScanLine(line)
	if err != nil {
		t.Fatalf("ScanLine: %v", err)
	}
	if raw.Result != "w" {
		t.Fatalf("Result = %q, want \"w\"", raw.Result)
	}
	if len(raw.MoveTokens) != 2 {
		t.Fatalf("MoveTokens = %v, want 2 entries", raw.MoveTokens)
	}
}

func TestScanLineRejectsMissingBraces(t *testing.T) {
	if _, err := ScanLine("fen, w, e2e4"); err == nil {
		t.Fatal("expected error for missing braces")
	}
}

func TestScanLineRejectsUnknownResult(t *testing.T) {
	if _, err := ScanLine("{ fen, x, e2e4 }"); err == nil {
		t.Fatal("expected error for unknown result code")
	}
}

func TestParseMoveTokenWithEval(t *testing.T) {
	tok, err := ParseMoveToken("e2e4:120:14")
	if err != nil {
		t.Fatalf("ParseMoveToken: %v", err)
	}
	if !tok.HasEval || tok.Score != 120 || tok.Depth != 14 || tok.Text != "e2e4" {
		t.Fatalf("tok = %+v, want Text=e2e4 Score=120 Depth=14", tok)
	}
}

func TestParseMoveTokenStripsCheckAndMateMarkers(t *testing.T) {
	tok, err := ParseMoveToken("e7e8q+\r\n")
	if err != nil {
		t.Fatalf("ParseMoveToken: %v", err)
	}
	if tok.Text != "e7e8q" {
		t.Fatalf("Text = %q, want \"e7e8q\"", tok.Text)
	}
	if tok.HasEval {
		t.Fatal("token without :score:depth should have HasEval = false")
	}
}

func TestParseMoveTokenRejectsMalformedEval(t *testing.T) {
	if _, err := ParseMoveToken("e2e4:notanumber:8"); err == nil {
		t.Fatal("expected error for non-numeric score")
	}
}
