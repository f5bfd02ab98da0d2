package maze

import "fmt"

// DistanceField holds breadth-first hop counts from a source cell.
// It is computed once and never mutated afterwards.
type DistanceField struct {
	cols, rows int
	source     Point
	dist       []int
	seen       []bool
}

// Source returns the cell the field was computed from.
func (f *DistanceField) Source() Point { return f.source }

// At returns the distance of (x,y) and whether the cell was reached.
func (f *DistanceField) At(x, y int) (int, bool) {
	if x < 1 || x > f.cols || y < 1 || y > f.rows {
		return 0, false
	}
	i := (y-1)*f.cols + (x - 1)
	return f.dist[i], f.seen[i]
}

// Reachable counts the cells reached from the source, the source included.
func (f *DistanceField) Reachable() int {
	n := 0
	for _, seen := range f.seen {
		if seen {
			n++
		}
	}
	return n
}

// Farthest returns the first reached cell in row-major order with the
// largest distance.
func (f *DistanceField) Farthest() (Point, int) {
	best, bestDist := f.source, 0
	for i, d := range f.dist {
		if f.seen[i] && d > bestDist {
			best = Point{X: i%f.cols + 1, Y: i/f.cols + 1}
			bestDist = d
		}
	}
	return best, bestDist
}

// DistancesFrom runs a breadth-first search over open walls starting at
// (x,y). Every call allocates its own scratch state.
func (m *Maze) DistancesFrom(x, y int) (*DistanceField, error) {
	if !m.InBounds(x, y) {
		return nil, fmt.Errorf("%w: source (%d,%d) in %dx%d maze", ErrOutOfBounds, x, y, m.cols, m.rows)
	}

	f := &DistanceField{
		cols:   m.cols,
		rows:   m.rows,
		source: Point{X: x, Y: y},
		dist:   make([]int, len(m.grid)),
		seen:   make([]bool, len(m.grid)),
	}

	start := m.index(x, y)
	f.seen[start] = true
	queue := []Point{{X: x, Y: y}}

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		d := f.dist[m.index(current.X, current.Y)]

		for _, next := range m.Passages(current.X, current.Y) {
			i := m.index(next.X, next.Y)
			if f.seen[i] {
				continue
			}
			f.seen[i] = true
			f.dist[i] = d + 1
			queue = append(queue, next)
		}
	}

	return f, nil
}

// Path returns the cells walked from src towards dst along the shortest
// route, src included and dst excluded. An empty path means src == dst.
func (m *Maze) Path(src, dst Point) ([]Point, error) {
	if !m.InBounds(src.X, src.Y) {
		return nil, fmt.Errorf("%w: path source %s", ErrOutOfBounds, src)
	}

	field, err := m.DistancesFrom(dst.X, dst.Y)
	if err != nil {
		return nil, err
	}

	remaining, ok := field.At(src.X, src.Y)
	if !ok {
		return nil, fmt.Errorf("%w: %s from %s", ErrUnreachable, src, dst)
	}

	path := make([]Point, 0, remaining)
	current := src
	for remaining != 0 {
		path = append(path, current)
		remaining--

		next, found := m.cellAt(field, current, remaining)
		if !found {
			return path, fmt.Errorf("%w: no step from %s at distance %d", ErrUnreachable, current, remaining)
		}
		current = next
	}

	return path, nil
}

// PathToExit returns the path from src to the bottom-right cell.
func (m *Maze) PathToExit(src Point) ([]Point, error) {
	return m.Path(src, Point{X: m.cols, Y: m.rows})
}

// cellAt returns the first open neighbour of p, in N, E, S, W order,
// whose distance equals want.
func (m *Maze) cellAt(f *DistanceField, p Point, want int) (Point, bool) {
	for _, next := range m.Passages(p.X, p.Y) {
		if d, seen := f.At(next.X, next.Y); seen && d == want {
			return next, true
		}
	}
	return Point{}, false
}
