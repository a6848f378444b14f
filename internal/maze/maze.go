// Package maze carves perfect mazes with a randomized depth-first backtracker.
package maze

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrEmptyMaze is returned when either dimension is below one.
var ErrEmptyMaze = errors.New("maze dimensions must be at least 1x1")

// Direction is a cardinal direction on the cell grid.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return "unknown"
}

// AllDirections returns the four cardinal directions.
func AllDirections() []Direction {
	return []Direction{North, South, East, West}
}

// Cell is one maze cell. Only the north and west walls are stored; a cell's
// south wall is its southern neighbour's north wall, and likewise for east.
// Walls are only ever removed once carving reaches the cell.
type Cell struct {
	X, Y        int  `json:"-"`
	NorthWall   bool `json:"top"`
	WestWall    bool `json:"left"`
	Visited     bool `json:"visited"`
	Backtracked bool `json:"backtracked"`
}

// Maze is a Width x Height grid of cells indexed Grid[y][x].
type Maze struct {
	Width, Height int
	Start         Point
	Grid          [][]*Cell
}

// Point is a cell coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// New returns a maze with every wall standing and nothing visited.
func New(width, height int) (*Maze, error) {
	if width < 1 || height < 1 {
		return nil, ErrEmptyMaze
	}
	m := &Maze{
		Width:  width,
		Height: height,
		Grid:   make([][]*Cell, height),
	}
	for y := 0; y < height; y++ {
		m.Grid[y] = make([]*Cell, width)
		for x := 0; x < width; x++ {
			m.Grid[y][x] = &Cell{X: x, Y: y, NorthWall: true, WestWall: true}
		}
	}
	return m, nil
}

// Generate carves a width x height maze starting from a uniformly random cell.
// The caller owns rng; pass a seeded source for reproducible layouts.
func Generate(width, height int, rng *rand.Rand) (*Maze, error) {
	m, err := New(width, height)
	if err != nil {
		return nil, err
	}
	m.Start = Point{X: rng.Intn(width), Y: rng.Intn(height)}
	c := carver{maze: m, rng: rng}
	c.carve(m.Start, m.Start)
	return m, nil
}

// At returns the cell at (x, y), or nil when out of bounds.
func (m *Maze) At(x, y int) *Cell {
	if !m.InBounds(x, y) {
		return nil
	}
	return m.Grid[y][x]
}

// InBounds reports whether (x, y) is a cell of the maze.
func (m *Maze) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Open reports whether a passage leads from (x, y) in direction dir.
func (m *Maze) Open(x, y int, dir Direction) bool {
	nx, ny := step(x, y, dir)
	if !m.InBounds(x, y) || !m.InBounds(nx, ny) {
		return false
	}
	switch dir {
	case North:
		return !m.Grid[y][x].NorthWall
	case West:
		return !m.Grid[y][x].WestWall
	case South:
		return !m.Grid[ny][nx].NorthWall
	case East:
		return !m.Grid[ny][nx].WestWall
	}
	return false
}

// Passages counts carved edges. A perfect maze has Width*Height-1.
func (m *Maze) Passages() int {
	count := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Open(x, y, North) {
				count++
			}
			if m.Open(x, y, West) {
				count++
			}
		}
	}
	return count
}

func step(x, y int, dir Direction) (int, int) {
	switch dir {
	case North:
		return x, y - 1
	case South:
		return x, y + 1
	case East:
		return x + 1, y
	case West:
		return x - 1, y
	}
	return x, y
}

type carver struct {
	maze *Maze
	rng  *rand.Rand
}

// carve visits p, arriving from prev. The wall shared with prev is knocked
// down, then the neighbours are tried in random order.
func (c *carver) carve(p, prev Point) {
	cell := c.maze.At(p.X, p.Y)
	if cell == nil || cell.Visited {
		return
	}
	cell.Visited = true

	switch {
	case p.X > prev.X:
		cell.WestWall = false
	case p.X < prev.X:
		c.maze.Grid[prev.Y][prev.X].WestWall = false
	case p.Y > prev.Y:
		cell.NorthWall = false
	case p.Y < prev.Y:
		c.maze.Grid[prev.Y][prev.X].NorthWall = false
	}

	for _, next := range c.neighbours(p) {
		if next == prev {
			continue
		}
		c.carve(next, p)
	}
	cell.Backtracked = true
}

// neighbours orders the four adjacent points by random sort keys.
func (c *carver) neighbours(p Point) []Point {
	points := []Point{
		{X: p.X + 1, Y: p.Y},
		{X: p.X - 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
		{X: p.X, Y: p.Y - 1},
	}
	keys := make([]int, len(points))
	for i := range keys {
		keys[i] = c.rng.Intn(10)
	}
	sort.Stable(byKey{points: points, keys: keys})
	return points
}

type byKey struct {
	points []Point
	keys   []int
}

func (b byKey) Len() int           { return len(b.points) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.points[i], b.points[j] = b.points[j], b.points[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
