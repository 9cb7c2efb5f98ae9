// meta/meta.go
package meta

import "time"

// WORKERS defines the number of search goroutines per request.
const WORKERS = 4

// ITERATIONS defines the default number of MCTS iterations per move.
const ITERATIONS = 10

// RADIUS defines the default board radius.
const RADIUS = 10

// EXPLORATION defines the default UCB1 exploration weight.
const EXPLORATION = 1.0

// MAX_TURNS caps the number of moves in a locally played game.
const MAX_TURNS = 1000

// ADDR defines the default listen address of the HTTP server.
const ADDR = ":8000"

// GAME_TTL is how long an untouched game session is kept by the server.
const GAME_TTL = 24 * time.Hour

// CLEANUP_INTERVAL is how often the server evicts finished or idle games.
const CLEANUP_INTERVAL = time.Minute
