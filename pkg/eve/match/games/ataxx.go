// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package games

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// AtaxxOracle implements Oracle for 7x7 Ataxx. Red moves with the x
// stones, blue with the o stones.
type AtaxxOracle struct {
	position AtaxxPosition
}

func (oracle *AtaxxOracle) Initialize(fen string) error {
	return oracle.position.SetFEN(fen)
}

func (oracle *AtaxxOracle) FEN() string {
	return oracle.position.FEN()
}

func (oracle *AtaxxOracle) IsLegal(mov string) bool {
	move, err := ParseAtaxxMove(mov)
	if err != nil {
		return false
	}

	return oracle.position.IsLegal(move)
}

func (oracle *AtaxxOracle) MakeMove(mov string) error {
	move, err := ParseAtaxxMove(mov)
	if err != nil {
		return err
	}

	if !oracle.position.IsLegal(move) {
		return fmt.Errorf("ataxx: illegal move %s", mov)
	}

	oracle.position.MakeMove(move)
	return nil
}

func (oracle *AtaxxOracle) GameOver() bool {
	return oracle.position.GameOver()
}

func (oracle *AtaxxOracle) Result() string {
	return oracle.position.Result()
}

// Bitboard is a set of squares on the 7x7 board. Bit n is the square
// with rank n/7 and file n%7.
type Bitboard uint64

const (
	bbAll      Bitboard = 0x1FFFFFFFFFFFF
	bbNotFileA Bitboard = 0x1FBF7EFDFBF7E
	bbNotFileG Bitboard = 0x0FDFBF7EFDFBF
)

// Singles returns the squares adjacent to any square in bb.
func (bb Bitboard) Singles() Bitboard {
	north := bb << 7
	south := bb >> 7
	east := ((bb << 1) | (bb << 8) | (bb >> 6)) & bbNotFileA
	west := ((bb >> 1) | (bb << 6) | (bb >> 8)) & bbNotFileG
	return (north | south | east | west) & bbAll
}

// Reach returns every square a stone in bb can move to, ignoring
// occupancy: everything within two king steps.
func (bb Bitboard) Reach() Bitboard {
	singles := bb.Singles()
	return singles | singles.Singles()
}

func (bb Bitboard) Count() int {
	return bits.OnesCount64(uint64(bb))
}

// Square is an index into a Bitboard, or NoSquare.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	return Square(rank*7 + file)
}

func (sq Square) File() int { return int(sq) % 7 }
func (sq Square) Rank() int { return int(sq) / 7 }

func (sq Square) Bitboard() Bitboard {
	return 1 << uint(sq)
}

func (sq Square) String() string {
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

func parseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'g' || s[1] < '1' || s[1] > '7' {
		return NoSquare, fmt.Errorf("ataxx: invalid square %q", s)
	}

	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// AtaxxMove is a single (From == To), a double, or the pass move (both
// squares NoSquare).
type AtaxxMove struct {
	From, To Square
}

var PassMove = AtaxxMove{NoSquare, NoSquare}

// ParseAtaxxMove parses a move in UAI notation: "0000", "b2" or "a1c3".
func ParseAtaxxMove(s string) (AtaxxMove, error) {
	switch len(s) {
	case 4:
		if s == "0000" {
			return PassMove, nil
		}

		from, err := parseSquare(s[:2])
		if err != nil {
			return AtaxxMove{}, err
		}

		to, err := parseSquare(s[2:])
		if err != nil {
			return AtaxxMove{}, err
		}

		return AtaxxMove{From: from, To: to}, nil

	case 2:
		to, err := parseSquare(s)
		if err != nil {
			return AtaxxMove{}, err
		}

		return AtaxxMove{From: to, To: to}, nil

	default:
		return AtaxxMove{}, fmt.Errorf("ataxx: invalid move %q", s)
	}
}

func (move AtaxxMove) IsPass() bool   { return move == PassMove }
func (move AtaxxMove) IsSingle() bool { return move.From == move.To && !move.IsPass() }

func (move AtaxxMove) String() string {
	switch {
	case move.IsPass():
		return "0000"
	case move.IsSingle():
		return move.To.String()
	default:
		return move.From.String() + move.To.String()
	}
}

// AtaxxPosition is an Ataxx board. Index 0 of pieces is red (x), index
// 1 is blue (o).
type AtaxxPosition struct {
	pieces    [2]Bitboard
	gaps      Bitboard
	turn      int
	halfmoves int
	fullmoves int
}

var errBadFEN = errors.New("ataxx: malformed fen")

// SetFEN loads a position such as "x5o/7/7/7/7/7/o5x x 0 1". Both the
// x/o and the r/b piece letters are accepted.
func (pos *AtaxxPosition) SetFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fmt.Errorf("%w: %q", errBadFEN, fen)
	}

	*pos = AtaxxPosition{fullmoves: 1}

	rows := strings.Split(fields[0], "/")
	if len(rows) != 7 {
		return fmt.Errorf("%w: want 7 ranks in %q", errBadFEN, fields[0])
	}

	for i, row := range rows {
		rank, file := 6-i, 0
		for _, c := range row {
			if file >= 7 {
				return fmt.Errorf("%w: rank %d is too long", errBadFEN, rank+1)
			}

			sq := NewSquare(file, rank).Bitboard()
			switch c {
			case 'x', 'r':
				pos.pieces[0] |= sq
			case 'o', 'b':
				pos.pieces[1] |= sq
			case '-':
				pos.gaps |= sq
			case '1', '2', '3', '4', '5', '6', '7':
				file += int(c-'0') - 1
			default:
				return fmt.Errorf("%w: unexpected %q", errBadFEN, c)
			}

			file++
		}

		if file != 7 {
			return fmt.Errorf("%w: rank %d has %d files", errBadFEN, rank+1, file)
		}
	}

	switch fields[1] {
	case "x", "r":
		pos.turn = 0
	case "o", "b":
		pos.turn = 1
	default:
		return fmt.Errorf("%w: bad side to move %q", errBadFEN, fields[1])
	}

	var err error
	if len(fields) >= 3 {
		if pos.halfmoves, err = strconv.Atoi(fields[2]); err != nil {
			return fmt.Errorf("%w: halfmove clock: %v", errBadFEN, err)
		}
	}

	if len(fields) >= 4 {
		if pos.fullmoves, err = strconv.Atoi(fields[3]); err != nil {
			return fmt.Errorf("%w: fullmove number: %v", errBadFEN, err)
		}
	}

	return nil
}

// FEN serializes the position with x/o piece letters.
func (pos *AtaxxPosition) FEN() string {
	var fen strings.Builder

	for rank := 6; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 7; file++ {
			sq := NewSquare(file, rank).Bitboard()

			var c byte
			switch {
			case pos.pieces[0]&sq != 0:
				c = 'x'
			case pos.pieces[1]&sq != 0:
				c = 'o'
			case pos.gaps&sq != 0:
				c = '-'
			default:
				empty++
				continue
			}

			if empty > 0 {
				fen.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			fen.WriteByte(c)
		}

		if empty > 0 {
			fen.WriteString(strconv.Itoa(empty))
		}

		if rank > 0 {
			fen.WriteByte('/')
		}
	}

	if pos.turn == 0 {
		fen.WriteString(" x ")
	} else {
		fen.WriteString(" o ")
	}

	fen.WriteString(strconv.Itoa(pos.halfmoves))
	fen.WriteByte(' ')
	fen.WriteString(strconv.Itoa(pos.fullmoves))
	return fen.String()
}

func (pos *AtaxxPosition) empty() Bitboard {
	return bbAll &^ (pos.pieces[0] | pos.pieces[1] | pos.gaps)
}

// HasMoves reports whether the side to move has a move other than a pass.
func (pos *AtaxxPosition) HasMoves() bool {
	return pos.pieces[pos.turn].Reach()&pos.empty() != 0
}

// Moves returns every legal move in the position. A side without any
// other move gets the pass move, unless the game is over.
func (pos *AtaxxPosition) Moves() []AtaxxMove {
	if pos.GameOver() {
		return nil
	}

	us, empty := pos.pieces[pos.turn], pos.empty()

	var moves []AtaxxMove
	for to := Square(0); to < 49; to++ {
		target := to.Bitboard()
		if empty&target == 0 {
			continue
		}

		if us.Singles()&target != 0 {
			moves = append(moves, AtaxxMove{From: to, To: to})
		}

		sources := (target.Reach() &^ target.Singles() &^ target) & us
		for from := Square(0); from < 49; from++ {
			if sources&from.Bitboard() != 0 {
				moves = append(moves, AtaxxMove{From: from, To: to})
			}
		}
	}

	if len(moves) == 0 {
		moves = append(moves, PassMove)
	}

	return moves
}

func (pos *AtaxxPosition) IsLegal(move AtaxxMove) bool {
	if move.IsPass() {
		return !pos.HasMoves() && !pos.GameOver()
	}

	us := pos.pieces[pos.turn]
	if pos.empty()&move.To.Bitboard() == 0 {
		return false
	}

	if move.IsSingle() {
		return us.Singles()&move.To.Bitboard() != 0
	}

	if us&move.From.Bitboard() == 0 {
		return false
	}

	return distance(move.From, move.To) == 2
}

// MakeMove plays a move without checking its legality.
func (pos *AtaxxPosition) MakeMove(move AtaxxMove) {
	us, them := pos.turn, pos.turn^1

	if move.IsPass() {
		pos.halfmoves++
	} else {
		to := move.To.Bitboard()
		if !move.IsSingle() {
			pos.pieces[us] &^= move.From.Bitboard()
		}
		pos.pieces[us] |= to

		captured := pos.pieces[them] & to.Singles()
		pos.pieces[us] |= captured
		pos.pieces[them] &^= captured

		if move.IsSingle() || captured != 0 {
			pos.halfmoves = 0
		} else {
			pos.halfmoves++
		}
	}

	pos.turn = them
	if pos.turn == 0 {
		pos.fullmoves++
	}
}

func (pos *AtaxxPosition) GameOver() bool {
	switch {
	case pos.halfmoves >= 100:
		return true
	case pos.pieces[0] == 0, pos.pieces[1] == 0:
		return true
	}

	both := pos.pieces[0] | pos.pieces[1]
	return both.Reach()&pos.empty() == 0
}

func (pos *AtaxxPosition) Result() string {
	if !pos.GameOver() {
		return Ongoing
	}

	if pos.halfmoves >= 100 {
		return Draw
	}

	red, blue := pos.pieces[0].Count(), pos.pieces[1].Count()
	switch {
	case red > blue:
		return RedWins
	case blue > red:
		return BlueWins
	default:
		return Draw
	}
}

func distance(a, b Square) int {
	df, dr := abs(a.File()-b.File()), abs(a.Rank()-b.Rank())
	if df > dr {
		return df
	}
	return dr
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
