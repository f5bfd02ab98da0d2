package maze

import (
	"fmt"
	"strings"
)

// Direction represents a cardinal direction.
// The declaration order N, E, S, W is also the order used whenever
// neighbours are scanned deterministically.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions returns all four cardinal directions in scan order.
func Directions() []Direction {
	return []Direction{North, East, South, West}
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	}
	return d
}

// Delta returns the coordinate offset of one step in this direction.
// y grows southwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	}
	return 0, 0
}

// bit returns the direction's bit in a [N E S W] nibble.
func (d Direction) bit() int {
	return 8 >> uint(d)
}

// ParseDirection accepts "n", "north", "N", "North" and so on.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Point is a 1-indexed maze coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Step returns the point one cell away in direction d.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// String renders the point as "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
