package task

import "fmt"

// Coordinate is a 0-based pixel position with a top-left origin.
type Coordinate struct {
	Column int
	Row    int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("{Coordinate Column: %d Row: %d}", c.Column, c.Row)
}
