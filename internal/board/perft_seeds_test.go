package board

import "testing"

// perftSeedCase is a canonical FEN with known-correct node counts at a
// sequence of depths, used to verify the legal move generator exhaustively.
type perftSeedCase struct {
	name  string
	fen   string
	nodes []int64 // index i holds the expected node count at depth i+1
}

var perftSeeds = []perftSeedCase{
	{
		name:  "promotion and castling position",
		fen:   "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		nodes: []int64{6, 264, 9467},
	},
	{
		name:  "discovered check position",
		fen:   "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		nodes: []int64{44, 1486, 62379},
	},
	{
		name:  "middlegame tactics position",
		fen:   "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		nodes: []int64{46, 2079, 89890},
	},
}

func TestPerftCanonicalSeeds(t *testing.T) {
	for _, c := range perftSeeds {
		t.Run(c.name, func(t *testing.T) {
			for depth, expected := range c.nodes {
				pos, err := ParseFEN(c.fen)
				if err != nil {
					t.Fatalf("ParseFEN(%q): %v", c.fen, err)
				}
				got := perft(pos, depth+1)
				if got != expected {
					t.Errorf("perft(%d) = %d, want %d", depth+1, got, expected)
				}
			}
		})
	}
}

// TestPerftCountMatchesMaterialized checks that PerftCount agrees with the
// materializing generator at every depth for a representative seed, since
// the two implementations must never diverge.
func TestPerftCountMatchesMaterialized(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	for depth := 1; depth <= 3; depth++ {
		pos2 := pos.Copy()
		want := perft(pos, depth)
		got := pos2.PerftCount(depth)
		if got != want {
			t.Errorf("PerftCount(%d) = %d, want %d", depth, got, want)
		}
	}
}

// TestHashStableUnderMakeUnmake checks that the Zobrist hash returns to its
// original value after a move is made and unmade, for every legal move from
// the starting position.
func TestHashStableUnderMakeUnmake(t *testing.T) {
	pos := NewPosition()
	originalHash := pos.Hash

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		pos.UnmakeMove(m, undo)
		if pos.Hash != originalHash {
			t.Errorf("hash not restored after make/unmake of %v: got %x, want %x", m, pos.Hash, originalHash)
		}
	}
}

// TestHashMatchesIncrementalComputation checks that the incrementally
// maintained hash after a move agrees with recomputing the hash from
// scratch on the resulting position.
func TestHashMatchesIncrementalComputation(t *testing.T) {
	pos := NewPosition()

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		cur := pos.Copy()
		cur.MakeMove(m)
		if cur.Hash != cur.ComputeHash() {
			t.Errorf("incremental hash for move %v diverges from recomputed hash: %x != %x", m, cur.Hash, cur.ComputeHash())
		}
	}
}

// TestEnPassantHashIgnoresUnattackedTarget checks the fix for the ep-hash
// bug: two positions differing only by an en-passant target that no pawn
// can actually capture must hash identically.
func TestEnPassantHashIgnoresUnattackedTarget(t *testing.T) {
	// Same piece placement in both FENs (a lone white pawn on d4, no black
	// pawn anywhere near d3): the ep target in the first is unreachable by
	// any capture, so its hash must equal the one with no ep target at all.
	noAttacker, err := ParseFEN("4k3/8/8/8/3P4/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	withoutEP, err := ParseFEN("4k3/8/8/8/3P4/8/8/4K3 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if noAttacker.Hash != withoutEP.Hash {
		t.Errorf("hash depends on an ep target no pawn attacks: %x != %x", noAttacker.Hash, withoutEP.Hash)
	}
}

// TestFENRoundTrip checks that ParseFEN(ToFEN(p)) reproduces the same FEN
// string for a handful of representative positions.
func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round-trip mismatch: got %q, want %q", got, fen)
		}
	}
}

// TestUCIMoveRoundTrip checks that rendering a legal move to a UCI string
// and parsing it back produces the same move.
func TestUCIMoveRoundTrip(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		s := m.String()
		parsed, err := ParseMove(s, pos)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", s, err)
		}
		if parsed != m {
			t.Errorf("round-trip mismatch for %v: got %v from string %q", m, parsed, s)
		}
	}
}

// TestDoubleCheckOnlyKingMoves checks that when two pieces give check
// simultaneously, every legal move is a king move.
func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// White king e1 is attacked simultaneously by a rook on the open e-file
	// and a knight on d3.
	pos, err := ParseFEN("4r2k/8/8/8/8/3n4/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	pos.UpdateCheckers()
	if pos.Checkers.PopCount() != 2 {
		t.Fatalf("expected double check, got %d checker(s)", pos.Checkers.PopCount())
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() != pos.KingSquare[White] {
			t.Errorf("non-king move %v generated while in check count %d", m, pos.Checkers.PopCount())
		}
	}
}

// TestPromotionGeneratesFourMoves checks that a pawn able to promote on an
// empty target square generates all four promotion pieces.
func TestPromotionGeneratesFourMoves(t *testing.T) {
	pos, err := ParseFEN("8/P6k/8/8/8/8/7p/7K w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	count := 0
	seen := map[PieceType]bool{}
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsPromotion() && m.From() == A7 && m.To() == A8 {
			count++
			seen[m.Promotion()] = true
		}
	}
	if count != 4 {
		t.Errorf("expected 4 promotion moves from a7a8, got %d", count)
	}
	for _, pt := range []PieceType{Knight, Bishop, Rook, Queen} {
		if !seen[pt] {
			t.Errorf("missing promotion to %v", pt)
		}
	}
}
