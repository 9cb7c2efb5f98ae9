package game

import "golang.org/x/exp/rand"

// Playout is a private, mutable working copy of a state used for random
// rollouts. Moves are undone in LIFO order; it must stay on one goroutine.
type Playout struct {
	origin  *GameState
	owners  []Player
	player  Player
	empty   []int // unclaimed indices; the first live entries are legal
	live    int
	slot    []int // position of each index in empty, -1 when claimed
	history []int
	conn    *connector
}

func NewPlayout(s *GameState) *Playout {
	p := &Playout{conn: newConnector(s.board.Len())}
	p.Load(s)
	return p
}

// Load discards the current position and copies s.
func (p *Playout) Load(s *GameState) {
	n := s.board.Len()
	p.origin = s
	p.player = s.player
	if cap(p.owners) < n {
		p.owners = make([]Player, n)
		p.slot = make([]int, n)
		p.empty = make([]int, 0, n)
	}
	p.owners = p.owners[:n]
	p.slot = p.slot[:n]
	p.empty = p.empty[:0]
	copy(p.owners, s.board.owners)
	for i, owner := range p.owners {
		p.slot[i] = -1
		if owner == None {
			p.slot[i] = len(p.empty)
			p.empty = append(p.empty, i)
		}
	}
	p.live = len(p.empty)
	p.history = p.history[:0]
}

// Player returns the seat to move in the working position.
func (p *Playout) Player() Player { return p.player }

// Moves returns how many unclaimed cells remain.
func (p *Playout) Moves() int { return p.live }

func (p *Playout) Depth() int { return len(p.history) }

// Play claims index for the player to move.
func (p *Playout) Play(index int) error {
	if index < 0 || index >= len(p.owners) || p.owners[index] != None {
		return ErrInvalidMove
	}
	p.claim(index)
	return nil
}

func (p *Playout) claim(index int) {
	// Swap the claimed index to the end of the live region so undo can
	// restore it by growing the region again.
	last := p.live - 1
	pos := p.slot[index]
	moved := p.empty[last]
	p.empty[pos], p.empty[last] = moved, index
	p.slot[moved], p.slot[index] = pos, -1
	p.live--

	p.owners[index] = p.player
	p.history = append(p.history, index)
	p.player = p.origin.mode.Next(p.player)
}

// Undo reverts the last move.
func (p *Playout) Undo() (int, bool) {
	if len(p.history) == 0 {
		return -1, false
	}
	index := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	p.owners[index] = None
	p.slot[index] = p.live
	p.live++
	p.player = p.origin.mode.Previous(p.player)
	return index, true
}

// Reset undoes every move since Load.
func (p *Playout) Reset() {
	for len(p.history) > 0 {
		p.Undo()
	}
}

func (p *Playout) hasWon(player Player) bool {
	return p.conn.connects(p.origin.board.grid, p.owners, player, func(owner Player) bool { return owner == player })
}

// Run plays uniformly random moves until the mover connects its edges or the
// board is full, and returns the winner or None for a draw. The position is
// left where the game ended; call Reset to reuse it.
func (p *Playout) Run(rng *rand.Rand) Player {
	for p.live > 0 {
		mover := p.player
		p.claim(p.empty[rng.Intn(p.live)])
		if p.hasWon(mover) {
			return mover
		}
	}
	return None
}

// State materialises the working position as an immutable GameState.
func (p *Playout) State() *GameState {
	owners := make([]Player, len(p.owners))
	copy(owners, p.owners)
	return &GameState{
		board:  &Board{grid: p.origin.board.grid, owners: owners},
		player: p.player,
		mode:   p.origin.mode,
	}
}
