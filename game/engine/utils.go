package engine

import (
	"fmt"
	"strings"
)

// CountKind counts the cells of a given kind on the board
func CountKind(board Board, kind CellKind) int {
	count := 0
	for _, row := range board {
		for _, cell := range row {
			if cell == kind {
				count++
			}
		}
	}
	return count
}

// FindKind returns the first position holding kind, scanning row by row
func FindKind(board Board, kind CellKind) (Position, bool) {
	for r, row := range board {
		for c, cell := range row {
			if cell == kind {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// KindChar maps a cell kind to its layout character
func KindChar(kind CellKind) string {
	switch kind {
	case Rock:
		return "R"
	case Question:
		return "?"
	case Bear:
		return "B"
	case Pot:
		return "P"
	default:
		return "E"
	}
}

// RenderBoard returns the board as layout rows
func RenderBoard(board Board) []string {
	rows := make([]string, 0, BoardSize)
	for _, row := range board {
		var sb strings.Builder
		for _, cell := range row {
			sb.WriteString(KindChar(cell))
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// FormatClock renders seconds as MM:SS
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ShortestPath finds the fewest moves from one cell to another through non-rock
// cells using breadth-first search. Question cells are passable since answering
// always moves the bear onto them. The pot ends a walk, so it is only entered as
// the destination.
func ShortestPath(board Board, from, to Position) ([]Direction, bool) {
	if !from.InBounds() || !to.InBounds() {
		return nil, false
	}
	if from == to {
		return []Direction{}, true
	}

	visited := map[Position]pathStep{from: {}}
	queue := []Position{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dir := range Directions {
			next := cur.Add(dir)
			if !next.InBounds() {
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			kind := board.At(next)
			if kind == Rock || (kind == Pot && next != to) {
				continue
			}
			visited[next] = pathStep{prev: cur, dir: dir}
			if next == to {
				return rebuildPath(visited, from, to), true
			}
			queue = append(queue, next)
		}
	}

	return nil, false
}

type pathStep struct {
	prev Position
	dir  Direction
}

func rebuildPath(visited map[Position]pathStep, from, to Position) []Direction {
	var path []Direction
	for cur := to; cur != from; cur = visited[cur].prev {
		path = append(path, visited[cur].dir)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ReachableQuestions lists the question cells the bear can reach from its start
func ReachableQuestions(board Board, from Position) []Position {
	var out []Position
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			p := Position{Row: r, Col: c}
			if board.At(p) != Question {
				continue
			}
			if _, ok := ShortestPath(board, from, p); ok {
				out = append(out, p)
			}
		}
	}
	return out
}
