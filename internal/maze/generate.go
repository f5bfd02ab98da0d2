package maze

import (
	"fmt"
	"strings"
)

// Algorithm selects one of the spanning-tree generators.
type Algorithm int

const (
	BinaryTree Algorithm = iota
	Sidewinder
	Backtracker
)

// Algorithms returns every supported generator.
func Algorithms() []Algorithm {
	return []Algorithm{BinaryTree, Sidewinder, Backtracker}
}

// String returns the canonical name used in configs and archives.
func (a Algorithm) String() string {
	switch a {
	case BinaryTree:
		return "binary-tree"
	case Sidewinder:
		return "sidewinder"
	case Backtracker:
		return "backtracker"
	}
	return "unknown"
}

// ParseAlgorithm converts a name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary-tree", "binarytree", "binary":
		return BinaryTree, nil
	case "sidewinder":
		return Sidewinder, nil
	case "backtracker", "recursive-backtracker", "dfs":
		return Backtracker, nil
	}
	return BinaryTree, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Generate raises every wall and carves the maze with algorithm a.
func (m *Maze) Generate(a Algorithm) error {
	switch a {
	case BinaryTree:
		m.BinaryTree()
	case Sidewinder:
		m.Sidewinder()
	case Backtracker:
		m.Backtracker()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	return nil
}

// BinaryTree links every cell but the last to its East or South neighbour.
// Cells on the last column can only go South and cells on the last row can
// only go East.
func (m *Maze) BinaryTree() {
	m.Reset()

	for i := 0; i < len(m.grid)-1; i++ {
		c := &m.grid[i]
		switch {
		case c.X == m.cols:
			m.removeWall(South, c.X, c.Y)
		case c.Y == m.rows:
			m.removeWall(East, c.X, c.Y)
		default:
			if choice(m.rng, 2) == 0 {
				m.removeWall(East, c.X, c.Y)
			} else {
				m.removeWall(South, c.X, c.Y)
			}
		}
	}
}

// Sidewinder carves each row into runs of East-linked cells. Closing a run
// opens the South wall of one of its cells. The last row is one long run.
func (m *Maze) Sidewinder() {
	m.Reset()

	for y := 1; y < m.rows; y++ {
		runStart := 1
		for x := 1; x <= m.cols; x++ {
			if x != m.cols && choice(m.rng, 2) == 0 {
				m.removeWall(East, x, y)
				continue
			}

			member := runStart + choice(m.rng, x-runStart+1)
			m.removeWall(South, member, y)
			runStart = x + 1
		}
	}

	for x := 1; x < m.cols; x++ {
		m.removeWall(East, x, m.rows)
	}
}

// Backtracker runs a randomized depth-first search from a random cell.
func (m *Maze) Backtracker() {
	m.Reset()

	visited := make([]bool, len(m.grid))
	current := Point{X: choice(m.rng, m.cols) + 1, Y: choice(m.rng, m.rows) + 1}
	visited[m.index(current.X, current.Y)] = true
	stack := []Point{current}

	candidates := make([]Direction, 0, 4)
	for len(stack) > 0 {
		candidates = candidates[:0]
		for _, d := range Directions() {
			next := current.Step(d)
			if m.InBounds(next.X, next.Y) && !visited[m.index(next.X, next.Y)] {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				current = stack[len(stack)-1]
			}
			continue
		}

		d := candidates[choice(m.rng, len(candidates))]
		m.removeWall(d, current.X, current.Y)
		current = current.Step(d)
		visited[m.index(current.X, current.Y)] = true
		stack = append(stack, current)
	}
}
