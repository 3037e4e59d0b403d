package coord

// Line steps from a toward b one unit at a time, calling fn with each point
// visited. The start point is not visited; the last call is always b.
//
// The axis with the larger delta drives the loop (Y on ties). Each step on
// the driving axis is followed by a separate step on the other axis whenever
// the accumulated error reaches the driving delta, so consecutive points
// never differ on both axes.
func Line(a, b Point, fn func(Point) error) error {
	if a.Equal(b) {
		return nil
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	sx, sy := 1, 1
	if dx <= 0 {
		sx = -1
	}
	if dy <= 0 {
		sy = -1
	}
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	p := a
	var over int
	if dx > dy {
		for i := 0; i < dx; i++ {
			p.X += sx
			if err := fn(p); err != nil {
				return err
			}
			over += dy
			if over >= dx {
				over -= dx
				p.Y += sy
				if err := fn(p); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i := 0; i < dy; i++ {
		p.Y += sy
		if err := fn(p); err != nil {
			return err
		}
		over += dx
		if over >= dy {
			over -= dy
			p.X += sx
			if err := fn(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Points collects the points Line would visit.
func Points(a, b Point) []Point {
	var res []Point
	Line(a, b, func(p Point) error {
		res = append(res, p)
		return nil
	})
	return res
}
