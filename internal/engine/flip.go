package engine

// ApplyFlip turns every run of opposing pieces bracketed between pos and
// another piece of color. Only Color is changed; OriginalColor stays as is.
// It returns the number of pieces flipped across all eight directions.
func ApplyFlip(board *Board, pos Position, color Color) int {
	flipped := 0
	for _, dir := range queenDirs {
		var run []Position
		for target := pos.add(dir); target.Valid(); target = target.add(dir) {
			piece := board.at(target)
			if piece == nil {
				break
			}
			if piece.Color != color {
				run = append(run, target)
				continue
			}
			for _, p := range run {
				board.at(p).Color = color
			}
			flipped += len(run)
			break
		}
	}
	return flipped
}

// EvaluateWin reports the winning color on board, or NoColor while the game
// goes on. A side loses when none of its pieces is a king, or else when it is
// down to a single piece. White is checked before black in both rules.
func EvaluateWin(board *Board) Color {
	var whiteKing, blackKing bool
	var whiteCount, blackCount int

	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			piece := board[row][col]
			if piece == nil {
				continue
			}
			switch piece.Color {
			case White:
				whiteCount++
				whiteKing = whiteKing || piece.Kind == King
			case Black:
				blackCount++
				blackKing = blackKing || piece.Kind == King
			}
		}
	}

	switch {
	case !whiteKing:
		return Black
	case !blackKing:
		return White
	case whiteCount <= 1:
		return Black
	case blackCount <= 1:
		return White
	}
	return NoColor
}
