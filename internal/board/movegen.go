package board

// GenerateLegalMoves generates every legal move for the side to move.
//
// Unlike a pseudo-legal generator followed by a make/unmake filter, this
// computes a checkmask, horizontal/vertical and diagonal pin masks, and the
// squares seen by the enemy once per call, then produces only moves that
// respect them. No candidate move is ever discarded after the fact.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateMoves(ml)
	return ml
}

// GeneratePseudoLegalMoves is the naive per-piece attack-bitboard walk with
// no legality filtering at all, used by tests as an independent reference
// generator to check GenerateLegalMoves for completeness: every pseudo-legal
// move that make/unmake confirms leaves the mover's king safe must appear
// exactly once in GenerateLegalMoves's output.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	us := p.SideToMove
	them := us.Other()
	all := p.AllOccupied

	for bb := p.Pieces[us][Knight]; bb != 0; {
		from := bb.PopLSB()
		for att := KnightAttacks(from) &^ p.Occupied[us]; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Bishop]; bb != 0; {
		from := bb.PopLSB()
		for att := BishopAttacks(from, all) &^ p.Occupied[us]; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Rook]; bb != 0; {
		from := bb.PopLSB()
		for att := RookAttacks(from, all) &^ p.Occupied[us]; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}
	for bb := p.Pieces[us][Queen]; bb != 0; {
		from := bb.PopLSB()
		for att := QueenAttacks(from, all) &^ p.Occupied[us]; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}
	from := p.KingSquare[us]
	for att := KingAttacks(from) &^ p.Occupied[us]; att != 0; {
		ml.Add(NewMove(from, att.PopLSB()))
	}
	p.pseudoLegalPawnMoves(ml, us, them, all)
	return ml
}

func (p *Position) pseudoLegalPawnMoves(ml *MoveList, us, them Color, all Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^all
	enemies := p.Occupied[them]

	fwd, rank3, promoRank := pawnGeometry(us)

	push1 := shiftForward(pawns, us) & empty
	push2 := shiftForward(push1&rank3, us) & empty
	attackL, attackR := pawnCaptureTargets(pawns, us, enemies)

	emitPawnTargets(ml, push1&^promoRank, -fwd, false)
	emitPawnTargets(ml, push2, -2*fwd, false)
	emitPawnTargets(ml, attackL&^promoRank, -fwd+1, false)
	emitPawnTargets(ml, attackR&^promoRank, -fwd-1, false)
	emitPawnTargets(ml, push1&promoRank, -fwd, true)
	emitPawnTargets(ml, attackL&promoRank, -fwd+1, true)
	emitPawnTargets(ml, attackR&promoRank, -fwd-1, true)

	if p.EnPassant != NoSquare {
		for att := pawnAttacks[them][p.EnPassant] & pawns; att != 0; {
			ml.Add(NewEnPassant(att.PopLSB(), p.EnPassant))
		}
	}
}

// pawnGeometry returns the forward push shift (in square-index units), the
// bitboard of the rank a single push must land on to be eligible for a
// double push, and the promotion rank, for the given side.
func pawnGeometry(us Color) (fwd int, pushRank3, promoRank Bitboard) {
	if us == White {
		return 8, Rank3, Rank8
	}
	return -8, Rank6, Rank1
}

func shiftForward(bb Bitboard, us Color) Bitboard {
	if us == White {
		return bb.North()
	}
	return bb.South()
}

func pawnCaptureTargets(pawns Bitboard, us Color, enemies Bitboard) (left, right Bitboard) {
	if us == White {
		return pawns.NorthWest() & enemies, pawns.NorthEast() & enemies
	}
	return pawns.SouthWest() & enemies, pawns.SouthEast() & enemies
}

func emitPawnTargets(ml *MoveList, targets Bitboard, fromOffset int, promotion bool) {
	for targets != 0 {
		to := targets.PopLSB()
		from := Square(int(to) + fromOffset)
		if promotion {
			addPromotions(ml, from, to)
		} else {
			ml.Add(NewMove(from, to))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// checkState bundles the per-call legality context computed once at the top
// of generateMoves: which squares resolve the current check(s), which of our
// pieces are pinned and along which axis, and what the enemy sees.
type checkState struct {
	checkers  Bitboard
	count     int
	checkmask Bitboard
	pinHV     Bitboard
	pinD      Bitboard
	seen      Bitboard
}

func (p *Position) computeCheckState(us, them Color, kingSq Square, all Bitboard) checkState {
	var cs checkState

	leaperCheckers := (pawnAttacks[us][kingSq] & p.Pieces[them][Pawn]) |
		(knightAttacks[kingSq] & p.Pieces[them][Knight])
	sliderCheckers := (BishopAttacks(kingSq, all) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])) |
		(RookAttacks(kingSq, all) & (p.Pieces[them][Rook] | p.Pieces[them][Queen]))

	cs.checkers = leaperCheckers | sliderCheckers
	cs.count = cs.checkers.PopCount()

	switch cs.count {
	case 0:
		cs.checkmask = Universe
	case 1:
		checkerSq := cs.checkers.LSB()
		cs.checkmask = SquareBB(checkerSq)
		if sliderCheckers != 0 {
			cs.checkmask |= Between(kingSq, checkerSq)
		}
	default: // double check: only king moves are legal
		cs.checkmask = Empty
	}

	cs.pinHV = pinMask(kingSq, p.Occupied[us], p.Occupied[them],
		RookAttacks(kingSq, p.Occupied[them]), p.Pieces[them][Rook]|p.Pieces[them][Queen])
	cs.pinD = pinMask(kingSq, p.Occupied[us], p.Occupied[them],
		BishopAttacks(kingSq, p.Occupied[them]), p.Pieces[them][Bishop]|p.Pieces[them][Queen])

	cs.seen = p.seenSquares(them, all&^SquareBB(kingSq))

	return cs
}

// pinMask finds sniper pieces (attackersFromKing, restricted to potential
// pinnerMask) whose ray to kingSq passes through exactly one of our pieces,
// and returns the union of every such ray (pinner included). attackersFromKing
// must have been computed with occupancy limited to the enemy side only, so
// that the "attack" reaches past our own pieces to the first possible pinner.
func pinMask(kingSq Square, us, them Bitboard, attackersFromKing, pinnerMask Bitboard) Bitboard {
	var pins Bitboard
	for snipers := attackersFromKing & pinnerMask; snipers != 0; {
		sq := snipers.PopLSB()
		ray := Between(kingSq, sq)
		if (ray & us).Single() {
			pins |= ray | SquareBB(sq)
		}
	}
	return pins
}

// seenSquares returns every square attacked by byColor, with kingRemovedOcc
// as the occupancy (the caller has already removed the defending king so
// that a slider's attack continues past the square the king used to stand
// on — otherwise the king could "hide" behind itself when stepping back
// along the same ray).
func (p *Position) seenSquares(byColor Color, kingRemovedOcc Bitboard) Bitboard {
	var seen Bitboard

	for bb := p.Pieces[byColor][Pawn]; bb != 0; {
		seen |= pawnAttacks[byColor][bb.PopLSB()]
	}
	for bb := p.Pieces[byColor][Knight]; bb != 0; {
		seen |= KnightAttacks(bb.PopLSB())
	}
	bishops := p.Pieces[byColor][Bishop] | p.Pieces[byColor][Queen]
	for bishops != 0 {
		seen |= BishopAttacks(bishops.PopLSB(), kingRemovedOcc)
	}
	rooks := p.Pieces[byColor][Rook] | p.Pieces[byColor][Queen]
	for rooks != 0 {
		seen |= RookAttacks(rooks.PopLSB(), kingRemovedOcc)
	}
	seen |= KingAttacks(p.KingSquare[byColor])

	return seen
}

// generateMoves is the side-agnostic entry point: Go has no templates to
// monomorphize on color at compile time, so the handful of side-dependent
// constants the generator needs (forward direction, promotion rank, home
// castling squares) are resolved once up front instead.
func (p *Position) generateMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	all := p.AllOccupied
	kingSq := p.KingSquare[us]

	cs := p.computeCheckState(us, them, kingSq, all)

	movable := ^p.Occupied[us]

	// King moves never need the checkmask (a king move resolves check by
	// leaving the attacked square, not by blocking or capturing in place).
	for att := KingAttacks(kingSq) & movable &^ cs.seen; att != 0; {
		ml.Add(NewMove(kingSq, att.PopLSB()))
	}
	if cs.count == 0 {
		p.generateCastling(ml, us, kingSq, cs)
	}

	movable &= cs.checkmask
	if cs.count >= 2 {
		return // double check: only the king moves already emitted are legal
	}

	p.generatePawnMoves(ml, us, them, all, movable, cs)
	p.generateLeaperAndSliderMoves(ml, us, all, movable, cs)
}

func (p *Position) generateLeaperAndSliderMoves(ml *MoveList, us Color, all, movable Bitboard, cs checkState) {
	pinned := cs.pinHV | cs.pinD

	for bb := p.Pieces[us][Knight] &^ pinned; bb != 0; {
		from := bb.PopLSB()
		for att := KnightAttacks(from) & movable; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}

	for bb := p.Pieces[us][Bishop] &^ cs.pinHV; bb != 0; {
		from := bb.PopLSB()
		att := BishopAttacks(from, all)
		if cs.pinD&SquareBB(from) != 0 {
			att &= cs.pinD
		}
		for att &= movable; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}

	for bb := p.Pieces[us][Rook] &^ cs.pinD; bb != 0; {
		from := bb.PopLSB()
		att := RookAttacks(from, all)
		if cs.pinHV&SquareBB(from) != 0 {
			att &= cs.pinHV
		}
		for att &= movable; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}

	for bb := p.Pieces[us][Queen] &^ (cs.pinHV & cs.pinD); bb != 0; {
		from := bb.PopLSB()
		var att Bitboard
		switch {
		case cs.pinHV&SquareBB(from) != 0:
			att = RookAttacks(from, all) & cs.pinHV
		case cs.pinD&SquareBB(from) != 0:
			att = BishopAttacks(from, all) & cs.pinD
		default:
			att = QueenAttacks(from, all)
		}
		for att &= movable; att != 0; {
			ml.Add(NewMove(from, att.PopLSB()))
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us, them Color, all, movable Bitboard, cs checkState) {
	pawns := p.Pieces[us][Pawn]
	empty := ^all
	enemies := p.Occupied[them]
	fwd, pushRank3, promoRank := pawnGeometry(us)

	notPinned := pawns &^ (cs.pinHV | cs.pinD)
	pinnedHV := pawns & cs.pinHV
	pinnedD := pawns & cs.pinD

	pushFree := shiftForward(notPinned, us) & empty
	pushPinned := shiftForward(pinnedHV, us) & empty & cs.pinHV
	push1 := (pushFree | pushPinned) & movable
	push2 := shiftForward((pushFree|pushPinned)&pushRank3, us) & empty & movable

	freeL, freeR := pawnCaptureTargets(notPinned, us, enemies)
	pinL, pinR := pawnCaptureTargets(pinnedD, us, enemies)
	attackL := (freeL | (pinL & cs.pinD)) & movable
	attackR := (freeR | (pinR & cs.pinD)) & movable

	emitPawnTargets(ml, push1&^promoRank, -fwd, false)
	emitPawnTargets(ml, push2, -2*fwd, false)
	emitPawnTargets(ml, attackL&^promoRank, -fwd+1, false)
	emitPawnTargets(ml, attackR&^promoRank, -fwd-1, false)
	emitPawnTargets(ml, push1&promoRank, -fwd, true)
	emitPawnTargets(ml, attackL&promoRank, -fwd+1, true)
	emitPawnTargets(ml, attackR&promoRank, -fwd-1, true)

	p.generateEnPassant(ml, us, them, pawns, cs)
}

// generateEnPassant handles the one genuinely tricky case in the generator:
// an ep capture can be illegal even when nothing else is, because removing
// both the capturing and captured pawn from the same rank can expose the
// king to a rook or queen along that rank (the "en passant pin exception").
func (p *Position) generateEnPassant(ml *MoveList, us, them Color, pawns Bitboard, cs checkState) {
	ep := p.EnPassant
	if ep == NoSquare {
		return
	}

	capturedSq := ep - 8
	if us == Black {
		capturedSq = ep + 8
	}

	// The capture must still resolve any existing check: either it removes
	// the checking pawn, or it blocks/captures on the checkmask itself.
	if cs.checkmask&(SquareBB(ep)|SquareBB(capturedSq)) == 0 {
		return
	}

	// A horizontally/vertically pinned pawn can never make this capture: it
	// would be moving off the pin ray. Excluding it here (rather than only
	// guarding the diagonal-pin case below) matches the pin rejection the
	// single-attacker branch already performs for the rook/queen rank check.
	attackers := pawnAttacks[them][ep] & (pawns &^ cs.pinHV)
	kingSq := p.KingSquare[us]

	if attackers.Single() {
		from := attackers.LSB()
		if cs.pinD&SquareBB(from) != 0 && cs.pinD&SquareBB(ep) == 0 {
			return // diagonally pinned and the ep square isn't on that pin ray
		}
		occ := p.AllOccupied &^ SquareBB(from) &^ SquareBB(capturedSq)
		horizontalCheckers := RookAttacks(kingSq, occ) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
		if horizontalCheckers == 0 {
			ml.Add(NewEnPassant(from, ep))
		}
		return
	}

	for bb := attackers; bb != 0; {
		from := bb.PopLSB()
		if cs.pinD&SquareBB(from) != 0 && cs.pinD&SquareBB(ep) == 0 {
			continue // diagonally pinned and the ep square isn't on that pin ray
		}
		ml.Add(NewEnPassant(from, ep))
	}
}

func (p *Position) generateCastling(ml *MoveList, us Color, kingSq Square, cs checkState) {
	var kingSide, queenSide bool
	var kingSideRook, queenSideRook Square
	rank := Rank1
	if us == Black {
		rank = Rank8
	}

	if us == White {
		kingSide = p.CastlingRights&WhiteKingSideCastle != 0
		queenSide = p.CastlingRights&WhiteQueenSideCastle != 0
		kingSideRook, queenSideRook = H1, A1
	} else {
		kingSide = p.CastlingRights&BlackKingSideCastle != 0
		queenSide = p.CastlingRights&BlackQueenSideCastle != 0
		kingSideRook, queenSideRook = H8, A8
	}

	if kingSide && p.castlingPathClear(kingSq, kingSideRook, rank, cs, true) {
		ml.Add(NewCastling(kingSq, kingSq+2))
	}
	if queenSide && p.castlingPathClear(kingSq, queenSideRook, rank, cs, false) {
		ml.Add(NewCastling(kingSq, kingSq-2))
	}
}

// castlingPathClear checks every legality condition for castling beyond
// "not currently in check" (already guaranteed by the caller): the rook is
// on its home square and unpinned along the rank, every square strictly
// between king and rook is empty, and every square the king crosses
// (including its destination) is empty of anything but the rook and is not
// seen by the enemy.
func (p *Position) castlingPathClear(kingSq, rookSq Square, rank Bitboard, cs checkState, kingSide bool) bool {
	if p.PieceAt(rookSq).Type() != Rook {
		return false
	}
	if cs.pinHV&SquareBB(rookSq) != 0 {
		return false
	}

	between := Between(kingSq, rookSq)
	if between&p.AllOccupied != 0 {
		return false
	}

	var kingPath Bitboard
	if kingSide {
		kingPath = Between(kingSq, kingSq+2) | SquareBB(kingSq+2)
	} else {
		kingPath = Between(kingSq, kingSq-2) | SquareBB(kingSq-2)
	}
	kingPath &^= SquareBB(rookSq)

	if kingPath&(p.AllOccupied|cs.seen) != 0 {
		return false
	}

	return true
}

// MakeMove applies a legal move to the position and returns the information
// needed to undo it. The move must have come from GenerateLegalMoves (or a
// UCI string that maps to one) on this exact position.
func (p *Position) MakeMove(m Move) UndoInfo {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	pt := piece.Type()

	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
	}

	p.HalfMoveClock++

	if p.EnPassant != NoSquare && p.enPassantAttackerExists() {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	isCapture := !m.IsCastling() && p.PieceAt(to) != NoPiece
	if isCapture || pt == Pawn {
		p.HalfMoveClock = 0
	}

	if isCapture {
		captured := p.removePiece(to)
		undo.CapturedPiece = captured
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.Hash ^= zobristCastling[p.CastlingRights]

	switch {
	case pt == King:
		p.CastlingRights &^= kingSideRight(us) | queenSideRight(us)
	case pt == Rook:
		p.CastlingRights &^= castlingRightForSquare(from)
	}
	p.CastlingRights &^= castlingRightForSquare(to)

	switch {
	case m.IsCastling():
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(from, to)
		p.Hash ^= zobristPiece[us][King][from] ^ zobristPiece[us][King][to]
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom] ^ zobristPiece[us][Rook][rookTo]

	case m.IsPromotion():
		p.removePiece(from)
		promoPt := m.Promotion()
		p.setPiece(NewPiece(promoPt, us), to)
		p.Hash ^= zobristPiece[us][Pawn][from] ^ zobristPiece[us][promoPt][to]

	default:
		p.movePiece(from, to)
		p.Hash ^= zobristPiece[us][pt][from] ^ zobristPiece[us][pt][to]
	}

	if m.IsEnPassant() {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capSq)
		p.Hash ^= zobristPiece[them][Pawn][capSq]
	}

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSq := Square((int(from) + int(to)) / 2)
		if pawnAttacks[us][epSq]&p.Pieces[them][Pawn] != 0 {
			p.EnPassant = epSq
			p.Hash ^= zobristEnPassant[epSq.File()]
		}
	}

	p.Hash ^= zobristCastling[p.CastlingRights]

	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	p.Hash ^= zobristSideToMove
	p.UpdateCheckers()

	return undo
}

// UnmakeMove reverses a move previously applied with MakeMove, using the
// UndoInfo it returned.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	from, to := m.From(), m.To()

	if us == Black {
		p.FullMoveNumber--
	}

	switch {
	case m.IsCastling():
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(rookTo, rookFrom)
		p.movePiece(to, from)

	case m.IsPromotion():
		p.removePiece(to)
		p.setPiece(NewPiece(Pawn, us), from)
		if undo.CapturedPiece != NoPiece {
			p.setPiece(undo.CapturedPiece, to)
		}

	case m.IsEnPassant():
		p.movePiece(to, from)
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.setPiece(undo.CapturedPiece, capSq)

	default:
		p.movePiece(to, from)
		if undo.CapturedPiece != NoPiece {
			p.setPiece(undo.CapturedPiece, to)
		}
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.UpdateCheckers()
}

func kingSideRight(c Color) CastlingRights {
	if c == White {
		return WhiteKingSideCastle
	}
	return BlackKingSideCastle
}

func queenSideRight(c Color) CastlingRights {
	if c == White {
		return WhiteQueenSideCastle
	}
	return BlackQueenSideCastle
}

// castlingRightForSquare returns the single castling right a rook standing
// on sq corresponds to, or NoCastling if sq is not one of the four rook home
// squares. Used both when a rook moves away from its home square and when a
// piece is captured on one (the captured piece need not even be a rook: if
// there is no rook there, the right is already gone and clearing it again is
// a no-op).
func castlingRightForSquare(sq Square) CastlingRights {
	switch sq {
	case A1:
		return WhiteQueenSideCastle
	case H1:
		return WhiteKingSideCastle
	case A8:
		return BlackQueenSideCastle
	case H8:
		return BlackKingSideCastle
	default:
		return NoCastling
	}
}

// castlingRookSquares returns the rook's home and destination squares for a
// castling move, given the encoded king from/to squares (to = king's
// destination square, this repo's castling convention).
func castlingRookSquares(kingFrom, kingTo Square) (rookFrom, rookTo Square) {
	rank := kingFrom.Rank()
	if kingTo > kingFrom {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}

// HasLegalMoves returns true if the side to move has any legal move at all.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the side to move is in check with no legal moves.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the side to move is not in check but has no legal moves.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// PerftCount returns the number of leaf nodes at the given depth, used by
// the perft driver's inner nodes where only the subtree size matters. It
// builds the full move list with GenerateLegalMoves at every node, including
// depth 1 where it returns that list's length; there is no separate
// counting generator that skips building the list.
func (p *Position) PerftCount(depth int) int64 {
	if depth == 0 {
		return 1
	}

	ml := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(ml.Len())
	}

	var nodes int64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := p.MakeMove(m)
		nodes += p.PerftCount(depth - 1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}
