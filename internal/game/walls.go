package game

import "quoridor-server/internal/player"

// A placed wall is exactly two adjacent units of the same orientation.
// A horizontal unit (r,c) blocks movement between rows r and r+1 at
// column c; a vertical unit (r,c) blocks movement between columns c and
// c+1 at row r.

func (g *Game) validateWallLocked(p *player.Player, m Move) error {
	if p.WallsLeft <= 0 {
		return ErrInvalidMove
	}
	a, b := m.Positions[0], m.Positions[1]
	if !wallUnitsAdjacent(a, b, m.IsHorizontal) {
		return ErrInvalidMove
	}
	if !wallUnitInBounds(a, m.IsHorizontal) || !wallUnitInBounds(b, m.IsHorizontal) {
		return ErrInvalidMove
	}

	placed := g.wallListLocked(m.IsHorizontal)
	if hasWallUnit(*placed, a) || hasWallUnit(*placed, b) {
		return ErrInvalidMove
	}

	// Provisionally apply the wall, confirm every player still reaches
	// their goal row, then revert regardless of outcome.
	*placed = append(*placed, a, b)
	reachable := true
	for _, pl := range g.players {
		if !g.pathToGoalExistsLocked(Cell{Row: pl.Position[0], Col: pl.Position[1]}, pl.GoalRow) {
			reachable = false
			break
		}
	}
	*placed = (*placed)[:len(*placed)-2]

	if !reachable {
		return ErrInvalidMove
	}
	return nil
}

func (g *Game) applyWallLocked(p *player.Player, m Move) {
	placed := g.wallListLocked(m.IsHorizontal)
	*placed = append(*placed, m.Positions[0], m.Positions[1])
	p.WallsLeft--
}

func (g *Game) wallListLocked(horizontal bool) *[]Cell {
	if horizontal {
		return &g.horizontalWalls
	}
	return &g.verticalWalls
}

func wallUnitsAdjacent(a, b Cell, horizontal bool) bool {
	if horizontal {
		return a.Row == b.Row && abs(a.Col-b.Col) == 1
	}
	return a.Col == b.Col && abs(a.Row-b.Row) == 1
}

func wallUnitInBounds(c Cell, horizontal bool) bool {
	if horizontal {
		// A horizontal unit lies between rows c.Row and c.Row+1.
		return c.Row >= 0 && c.Row < BoardSize-1 && c.Col >= 0 && c.Col < BoardSize
	}
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize-1
}

func hasWallUnit(cells []Cell, c Cell) bool {
	for _, w := range cells {
		if w == c {
			return true
		}
	}
	return false
}

// wallBlockedLocked reports whether a placed wall separates the two
// orthogonally adjacent cells.
func (g *Game) wallBlockedLocked(from, to Cell) bool {
	switch {
	case to.Row == from.Row+1:
		return hasWallUnit(g.horizontalWalls, Cell{Row: from.Row, Col: from.Col})
	case to.Row == from.Row-1:
		return hasWallUnit(g.horizontalWalls, Cell{Row: to.Row, Col: to.Col})
	case to.Col == from.Col+1:
		return hasWallUnit(g.verticalWalls, Cell{Row: from.Row, Col: from.Col})
	case to.Col == from.Col-1:
		return hasWallUnit(g.verticalWalls, Cell{Row: to.Row, Col: to.Col})
	}
	return false
}

// pathToGoalExistsLocked runs a breadth-first search over the
// 4-neighborhood, with placed walls as blocked edges, and reports
// whether any cell of the goal row is reachable from start.
func (g *Game) pathToGoalExistsLocked(start Cell, goalRow int) bool {
	var visited [BoardSize][BoardSize]bool
	queue := []Cell{start}
	visited[start.Row][start.Col] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Row == goalRow {
			return true
		}
		for _, next := range [4]Cell{
			{Row: cur.Row - 1, Col: cur.Col},
			{Row: cur.Row + 1, Col: cur.Col},
			{Row: cur.Row, Col: cur.Col - 1},
			{Row: cur.Row, Col: cur.Col + 1},
		} {
			if next.Row < 0 || next.Row >= BoardSize || next.Col < 0 || next.Col >= BoardSize {
				continue
			}
			if visited[next.Row][next.Col] {
				continue
			}
			if g.wallBlockedLocked(cur, next) {
				continue
			}
			visited[next.Row][next.Col] = true
			queue = append(queue, next)
		}
	}
	return false
}
