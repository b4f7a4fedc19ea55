package cgos

import "testing"

func playAll(t *testing.T, b *Board, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if res := b.Make(mv); res < 0 {
			t.Fatalf("Make(%q) = %d, expected a legal move", mv, res)
		}
	}
}

func TestSimpleGame(t *testing.T) {
	board := MakeBoard(9, PositionalKo)

	for i, test := range []struct {
		move string
		want int
		done bool
	}{
		{"C3", 0, false},
		{"d3", 0, false},
		{"D4", 0, false},
		{"C4", 0, false},
		{"B4", 0, false},
		{"B3", 0, false},
		{"C5", 1, false},
		{"C2", 0, false},
		{"PASS", 0, false},
		{"C1", 0, false},
		{"PASS", 0, false},
		{"A4", 0, false},
		{"PASS", 0, false},
		{"PASS", 0, true},
	} {
		if got := board.Make(test.move); got != test.want {
			t.Errorf("(%d) Make(%q) = %d, expected %d",
				i, test.move, got, test.want)
		}
		if got := board.TwoPass(); got != test.done {
			t.Errorf("(%d) TwoPass() = %v, expected %v",
				i, got, test.done)
		}
	}
}

func TestMakeMalformed(t *testing.T) {
	board := MakeBoard(9, PositionalKo)

	for i, test := range []struct {
		move string
		want int
	}{
		{"2C3", MoveMalformed},
		{"", MoveMalformed},
		{"I1", MoveMalformed},
		{"C0", MoveMalformed},
		{"C1", 0},
		{"C9", 0},
		{"C10", MoveMalformed},
		{"J1", 0},
		{"K1", MoveMalformed},
		{"M1", MoveMalformed},
	} {
		if got := board.Make(test.move); got != test.want {
			t.Errorf("(%d) Make(%q) = %d, expected %d",
				i, test.move, got, test.want)
		}
	}
}

func TestMakeOccupied(t *testing.T) {
	board := MakeBoard(9, PositionalKo)

	if got := board.Make("C3"); got != 0 {
		t.Errorf("Make(C3) = %d, expected 0", got)
	}
	if got := board.Make("C3"); got != MoveOccupied {
		t.Errorf("Make(C3) = %d, expected %d", got, MoveOccupied)
	}
}

func TestMakeSuicide(t *testing.T) {
	board := MakeBoard(9, PositionalKo)

	playAll(t, board, "A2", "C3", "B1")
	if got := board.Make("A1"); got != MoveSuicide {
		t.Errorf("Make(A1) = %d, expected %d", got, MoveSuicide)
	}
}

// Build the one point ko shape around C2/C3 and capture once.  The
// position before white's capture repeats if black takes back.
func koPrefix(t *testing.T, ko KoRule) *Board {
	t.Helper()
	board := MakeBoard(9, ko)
	playAll(t, board, "B3", "B2", "D3", "D2", "C4", "C1", "C2")
	if got := board.Make("C3"); got != 1 {
		t.Fatalf("Make(C3) = %d, expected a single capture", got)
	}
	return board
}

func TestKoRetake(t *testing.T) {
	// The immediate retake repeats the previous position and is
	// rejected under either rule.
	for _, ko := range []KoRule{SimpleKo, PositionalKo} {
		board := koPrefix(t, ko)
		if got := board.Make("C2"); got != MoveKo {
			t.Errorf("(%v) Make(C2) = %d, expected %d",
				ko, got, MoveKo)
		}
	}
}

func TestKoAfterPasses(t *testing.T) {
	// Two passes later the retake no longer repeats the previous
	// position, only an older one.  The simple rule allows it, the
	// positional rule still rejects it.
	board := koPrefix(t, SimpleKo)
	playAll(t, board, "PASS", "PASS")
	if got := board.Make("C2"); got != 1 {
		t.Errorf("(simple) Make(C2) = %d, expected 1", got)
	}

	board = koPrefix(t, PositionalKo)
	playAll(t, board, "PASS", "PASS")
	if got := board.Make("C2"); got != MoveKo {
		t.Errorf("(positional) Make(C2) = %d, expected %d",
			got, MoveKo)
	}
}

func TestBoardString(t *testing.T) {
	board := MakeBoard(5, PositionalKo)

	for i, test := range []struct {
		moves []string
		want  string
	}{
		{
			moves: []string{"C3", "d3", "D4", "C4"},
			want: ".....\n" +
				"..OX.\n" +
				"..XO.\n" +
				".....\n" +
				".....\n",
		},
		{
			moves: []string{"B4", "B3", "C5", "C2"},
			want: "..X..\n" +
				".X.X.\n" +
				".OXO.\n" +
				"..O..\n" +
				".....\n",
		},
		{
			moves: []string{"A5", "C1", "D2", "A4", "D1"},
			want: "X.X..\n" +
				"OX.X.\n" +
				".OXO.\n" +
				"..OX.\n" +
				"..OX.\n",
		},
	} {
		playAll(t, board, test.moves...)
		if got := board.String(); got != test.want {
			t.Errorf("(%d) String() = %q, expected %q",
				i, got, test.want)
		}
	}
}

func TestScore(t *testing.T) {
	board := MakeBoard(5, PositionalKo)

	// Two stones a side and no settled territory.
	playAll(t, board, "C3", "d3", "D4", "C4")
	if got := board.Score(); got != 0 {
		t.Errorf("Score() = %d, expected 0", got)
	}

	// Black holds two eyes, white the lower left region.  Black has
	// 7 stones and 2 points, white 5 stones and 5 points.
	playAll(t, board, "B4", "B3", "C5", "C2",
		"A5", "C1", "D2", "A4", "D1")
	if got := board.Score(); got != -1 {
		t.Errorf("Score() = %d, expected -1", got)
	}
}

func TestUnmake(t *testing.T) {
	board := MakeBoard(5, PositionalKo)
	if board.Unmake() {
		t.Error("Unmake() on the initial position, expected false")
	}

	playAll(t, board, "C3", "d3", "D4", "C4", "B4", "B3")
	before := board.String()
	score := board.Score()

	if got := board.Make("C5"); got != 1 {
		t.Fatalf("Make(C5) = %d, expected 1", got)
	}
	if !board.Unmake() {
		t.Fatal("Unmake() failed after a capture")
	}

	if got := board.Ply(); got != 6 {
		t.Errorf("Ply() = %d, expected 6", got)
	}
	if got := board.String(); got != before {
		t.Errorf("String() = %q, expected %q", got, before)
	}
	if got := board.Score(); got != score {
		t.Errorf("Score() = %d, expected %d", got, score)
	}

	// The move replays exactly as before.
	if got := board.Make("C5"); got != 1 {
		t.Errorf("Make(C5) = %d, expected 1", got)
	}
}
