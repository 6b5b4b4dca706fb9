package game

import (
	"fmt"
	"math"

	"lifelens-island/internal/domain/island"
)

// maxEarned caps converted savings so the integer math below cannot overflow.
const maxEarned = math.MaxInt32

// AvailableCurrency is floor(totalSavings*rate) minus everything spent so far.
// Savings are rounded to whole cents first and converted in integer math.
// It may be negative after penalties; callers authorize against it as is.
func AvailableCurrency(totalSavings float64, cumulativeSpent, rate int) int {
	return EarnedCurrency(totalSavings, rate) - cumulativeSpent
}

// EarnedCurrency converts savings into currency, capped at maxEarned.
func EarnedCurrency(totalSavings float64, rate int) int {
	cents := math.Round(totalSavings * 100)
	if !(cents > 0) || rate <= 0 {
		return 0
	}
	if cents*float64(rate) >= maxEarned*100 {
		return maxEarned
	}
	return int(int64(cents) * int64(rate) / 100)
}

// Purchase buys one piece when its cost fits in available.
func Purchase(st State, pieceID string, available int) (State, error) {
	piece, ok := island.PieceByID(pieceID)
	if !ok {
		return st, fmt.Errorf("%w: %q", ErrUnknownPiece, pieceID)
	}
	if piece.Cost > available {
		return st, fmt.Errorf("%w: %s costs %d, %d available", ErrInsufficientFunds, piece.Name, piece.Cost, max(available, 0))
	}
	next := st.Clone()
	next.Inventory[piece.ID]++
	next.CumulativeSpent += piece.Cost
	return next, nil
}

// Place moves one owned piece onto a revealed, unoccupied land cell.
func Place(st State, m island.WorldMap, pieceID string, at island.Coord, instanceID string) (State, PlacedPiece, error) {
	switch {
	case st.Inventory[pieceID] < 1:
		return st, PlacedPiece{}, fmt.Errorf("%w: no %s in inventory", ErrIllegalPlacement, pieceID)
	case !m.InBounds(at):
		return st, PlacedPiece{}, fmt.Errorf("%w: %s is off the map", ErrIllegalPlacement, at)
	case !m.IsLand(at):
		return st, PlacedPiece{}, fmt.Errorf("%w: %s is not land", ErrIllegalPlacement, at)
	case !st.IsRevealed(at):
		return st, PlacedPiece{}, fmt.Errorf("%w: %s is still fogged", ErrIllegalPlacement, at)
	}
	if _, taken := st.PieceAt(at); taken {
		return st, PlacedPiece{}, fmt.Errorf("%w: %s is occupied", ErrIllegalPlacement, at)
	}

	next := st.Clone()
	next.Inventory[pieceID]--
	if next.Inventory[pieceID] <= 0 {
		delete(next.Inventory, pieceID)
	}
	placed := PlacedPiece{InstanceID: instanceID, PieceID: pieceID, At: at}
	next.Placed = append(next.Placed, placed)
	return next, placed, nil
}

// ApplyPenalty charges amount against the spend ledger.
func ApplyPenalty(st State, amount int) State {
	next := st.Clone()
	next.CumulativeSpent += amount
	return next
}
