package game

// connector runs edge-to-edge searches. Visited marks are generation
// stamps so a connector can be reused without clearing.
type connector struct {
	mark  []uint32
	gen   uint32
	queue []int
}

func newConnector(cells int) *connector {
	return &connector{mark: make([]uint32, cells), queue: make([]int, 0, cells)}
}

func (c *connector) reset(cells int) {
	if len(c.mark) != cells {
		c.mark = make([]uint32, cells)
		c.gen = 0
	}
	c.gen++
	if c.gen == 0 { // wrapped
		clear(c.mark)
		c.gen = 1
	}
	c.queue = c.queue[:0]
}

// connects runs a breadth-first search from p's starting edge through
// cells accepted by passable and reports whether it reaches the opposite edge.
func (c *connector) connects(grid *Grid, owners []Player, p Player, passable func(Player) bool) bool {
	c.reset(len(owners))
	for _, i := range grid.starts[p] {
		if passable(owners[i]) {
			c.mark[i] = c.gen
			c.queue = append(c.queue, i)
		}
	}
	for head := 0; head < len(c.queue); head++ {
		current := c.queue[head]
		if grid.IsOppositeEdge(current, p) {
			return true
		}
		for _, n := range grid.neighbors[current] {
			if c.mark[n] != c.gen && passable(owners[n]) {
				c.mark[n] = c.gen
				c.queue = append(c.queue, n)
			}
		}
	}
	return false
}

func (c *connector) hasWon(b *Board, p Player) bool {
	return c.connects(b.grid, b.owners, p, func(owner Player) bool { return owner == p })
}

// couldWin treats every unclaimed cell as owned by p.
func (c *connector) couldWin(b *Board, p Player) bool {
	return c.connects(b.grid, b.owners, p, func(owner Player) bool { return owner == p || owner == None })
}

// HasWon reports whether p owns a chain joining its starting edge to its
// opposite edge.
func HasWon(b *Board, p Player) bool {
	if p < One || p > Three {
		return false
	}
	return newConnector(b.Len()).hasWon(b, p)
}

// IsDraw reports whether none of players could win even if every unclaimed
// cell were handed to them. This is an approximation: a full assignment can
// open paths that careful opponents would never allow.
func IsDraw(b *Board, players []Player) bool {
	c := newConnector(b.Len())
	for _, p := range players {
		if c.couldWin(b, p) {
			return false
		}
	}
	return true
}
