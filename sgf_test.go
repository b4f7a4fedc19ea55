package cgos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscapeSGF(t *testing.T) {
	assert.Equal(t, "plain", EscapeSGF("plain"))
	assert.Equal(t, "a\\]b", EscapeSGF("a]b"))
	assert.Equal(t, "a\\\\b", EscapeSGF("a\\b"))
	assert.Equal(t, "\\\\\\]", EscapeSGF("\\]"))
}

func TestSGF(t *testing.T) {
	g := &Game{
		Id:          42,
		White:       "alice",
		Black:       "bob",
		WhiteRating: "1910?",
		BlackRating: "1800",
		Moves: []Move{
			{Text: "c3", Left: 899 * time.Second},
			{Text: "j9", Left: 898 * time.Second},
			{Text: "pass", Left: 897 * time.Second},
			{Text: "d5", Left: 890 * time.Second,
				Analysis: `{"comment":"ok]","winrate":0.5}`},
		},
	}

	got := SGF(g, "cgos-9x9", 9, 7.5, 15*time.Minute,
		"B+Resign", "2024-03-01", "")

	want := "(;GM[1]FF[4]CA[UTF-8]\n" +
		"RU[Chinese]SZ[9]KM[7.5]TM[900]\n" +
		"PW[alice]PB[bob]WR[1910?]BR[1800]DT[2024-03-01]" +
		"PC[cgos-9x9]RE[B+Resign]GN[42]\n" +
		";B[cg]BL[899]" +
		";W[ia]WL[898]" +
		";B[]BL[897]" +
		";W[de]WL[890]" +
		"CC[{\"comment\":\"ok\\]\",\"winrate\":0.5}]\n" +
		"C[ok\\]]" +
		")\n"

	assert.Equal(t, want, got)
}

func TestSGFWrapAndComment(t *testing.T) {
	g := &Game{Id: 7, White: "w", Black: "b",
		WhiteRating: "1500", BlackRating: "1500"}
	for _, mv := range []string{"a1", "b1", "c1", "d1",
		"e1", "f1", "g1", "h1", "j1"} {
		g.Moves = append(g.Moves, Move{Text: mv, Left: time.Second})
	}

	got := SGF(g, "cgos-9x9", 9, 7.5, 15*time.Minute,
		"W+Illegal", "2024-03-01", "illegal move: suicide")

	want := "(;GM[1]FF[4]CA[UTF-8]\n" +
		"RU[Chinese]SZ[9]KM[7.5]TM[900]\n" +
		"PW[w]PB[b]WR[1500]BR[1500]DT[2024-03-01]" +
		"PC[cgos-9x9]RE[W+Illegal]GN[7]\n" +
		";B[ai]BL[1];W[bi]WL[1];B[ci]BL[1];W[di]WL[1]" +
		";B[ei]BL[1];W[fi]WL[1];B[gi]BL[1];W[hi]WL[1]\n" +
		";B[ii]BL[1]" +
		";C[illegal move: suicide]\n" +
		")\n"

	assert.Equal(t, want, got)
}
