package game

import "fmt"

// Player identifies a seat. None marks an unclaimed cell.
type Player uint8

const (
	None Player = iota
	One
	Two
	Three
)

func (p Player) String() string {
	if p == None {
		return "none"
	}
	return fmt.Sprintf("player%d", p)
}

// Mode is the number of seats in play.
type Mode int

const (
	TwoPlayer   Mode = 2
	ThreePlayer Mode = 3
)

var priority = []Player{One, Two, Three}

// Players returns the seats of the mode in turn order.
func (m Mode) Players() []Player {
	return priority[:int(m)]
}

// Next returns the seat after p in turn order (1->2 or 1->2->3->1).
func (m Mode) Next(p Player) Player {
	return Player(int(p)%int(m) + 1)
}

// Previous returns the seat that moved before p.
func (m Mode) Previous(p Player) Player {
	return Player((int(p)+int(m)-2)%int(m) + 1)
}

// Valid reports whether p takes turns in this mode.
func (m Mode) Valid(p Player) bool {
	return m.validMode() && p >= One && int(p) <= int(m)
}

func (m Mode) validMode() bool {
	return m == TwoPlayer || m == ThreePlayer
}
