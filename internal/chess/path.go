package chess

// GeneratePath returns the cells strictly between from and to, walking from
// from towards to. The two cells must share a rank, a file or a diagonal;
// anything else is a caller bug and panics.
func GeneratePath(from, to Cell) []Cell {
	df := int(to.File) - int(from.File)
	dr := int(to.Rank) - int(from.Rank)
	if df != 0 && dr != 0 && abs(df) != abs(dr) {
		panic("chess: non linear path requested from " + from.String() + " to " + to.String())
	}

	length := max(abs(df), abs(dr))
	if length <= 1 {
		return nil
	}
	stepF, stepR := sign(df), sign(dr)
	path := make([]Cell, 0, length-1)
	for i := 1; i < length; i++ {
		path = append(path, Cell{
			File: File(int(from.File) + i*stepF),
			Rank: Rank(int(from.Rank) + i*stepR),
		})
	}
	return path
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
