// Package task splits an image into independently renderable pieces.
package task

import (
	"fmt"
	"image"
	"iter"
	"strings"
)

const (
	Row Generation = iota
	Column
	Image
	Grid
)

// Generation selects how an image is divided into tasks.
type Generation int

var generationNames = []string{
	"Row", "Column", "Image", "Grid",
}

func (g Generation) String() string {
	if g < Row || g > Grid {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return generationNames[g]
}

func ParseGeneration(name string) (Generation, error) {
	for i, n := range generationNames {
		if strings.EqualFold(n, name) {
			return Generation(i), nil
		}
	}
	return Row, fmt.Errorf("unknown task generation %q, want one of %s", name, strings.Join(generationNames, ", "))
}

func (g Generation) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Generation) UnmarshalText(text []byte) error {
	parsed, err := ParseGeneration(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Set and Type let a Generation be used as a command line flag value.
func (g *Generation) Set(name string) error {
	return g.UnmarshalText([]byte(name))
}

func (g *Generation) Type() string {
	return "generation"
}

type Task struct {
	ID     uint
	Bounds image.Rectangle
}

func NewTask(id uint, bounds image.Rectangle) Task {
	return Task{
		ID:     id,
		Bounds: bounds,
	}
}

func (t Task) String() string {
	return fmt.Sprintf("{Task ID: %d Bounds: %s}", t.ID, t.Bounds)
}

func (t Task) Pixels() int {
	return t.Bounds.Dx() * t.Bounds.Dy()
}

// Coordinates yields every pixel of the task in row-major order.
func (t Task) Coordinates() iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		for r := t.Bounds.Min.Y; r < t.Bounds.Max.Y; r++ {
			for c := t.Bounds.Min.X; c < t.Bounds.Max.X; c++ {
				if !yield(Coordinate{Column: c, Row: r}) {
					return
				}
			}
		}
	}
}

// Split covers bounds with non-overlapping tasks, in row-major order of their top-left corners.
func Split(bounds image.Rectangle, g Generation) []Task {
	var rects []image.Rectangle
	switch g {
	case Column:
		for c := bounds.Min.X; c < bounds.Max.X; c++ {
			rects = append(rects, image.Rect(c, bounds.Min.Y, c+1, bounds.Max.Y))
		}
	case Image:
		rects = append(rects, bounds)
	case Grid:
		rects = splitRect(bounds, GridSize, GridSize)
	default:
		for r := bounds.Min.Y; r < bounds.Max.Y; r++ {
			rects = append(rects, image.Rect(bounds.Min.X, r, bounds.Max.X, r+1))
		}
	}

	tasks := make([]Task, 0, len(rects))
	for i, rect := range rects {
		if rect.Empty() {
			continue
		}
		tasks = append(tasks, NewTask(uint(i), rect))
	}
	return tasks
}
