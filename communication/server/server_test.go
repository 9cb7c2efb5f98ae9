package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hexsquared/communication"
	"hexsquared/communication/client"
	"hexsquared/game"
	"hexsquared/gamemaster"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(gamemaster.NewGameMaster()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body any) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func hexes(owners map[int]int) []communication.Hex {
	board := communication.FromBoard(game.NewBoard(1, game.TwoPlayer))
	for i := range board {
		board[i].Owner = owners[board[i].Index]
	}
	return board
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)

	message, err := client.New(ts.URL, time.Second).Status(context.Background())

	require.NoError(t, err)
	require.Equal(t, "Hex MCTS API is running", message)
}

func TestAIKinds(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ai")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var kinds []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&kinds))
	require.Equal(t, []string{"mcts", "random", "edge", "center", "path"}, kinds)

	for _, kind := range kinds {
		resp, _ := post(t, ts.URL+"/games", communication.CreateGameRequest{
			Radius: 1, Players: 2, Seats: []string{"human", kind}, Iterations: 5, Workers: 1,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, kind)
	}
}

func TestBestMove(t *testing.T) {
	ts := newTestServer(t)
	c := client.New(ts.URL, 5*time.Second)
	ctx := context.Background()

	t.Run("single legal move", func(t *testing.T) {
		move, err := c.BestMove(ctx, communication.BestMoveRequest{
			Board:   hexes(map[int]int{2: 1, 3: 1, 5: 1, 0: 2, 1: 2, 6: 2}),
			Player:  1,
			Players: 2,
		})

		require.NoError(t, err)
		require.Equal(t, 4, move)
	})

	t.Run("defaults to three players", func(t *testing.T) {
		board := game.NewBoard(2, game.ThreePlayer)
		req := communication.BestMoveRequest{Board: communication.FromBoard(board), Player: 1}

		resp, body := post(t, ts.URL+"/best-move/", req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out communication.BestMoveResponse
		require.NoError(t, json.Unmarshal(body, &out))
		require.Contains(t, board.Empty(), out.BestMove)
		require.Contains(t, string(body), `"BestMove"`)
	})

	t.Run("path without trailing slash", func(t *testing.T) {
		resp, _ := post(t, ts.URL+"/best-move", communication.BestMoveRequest{
			Board:  communication.FromBoard(game.NewBoard(1, game.TwoPlayer)),
			Player: 2,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("malformed board is rejected", func(t *testing.T) {
		board := hexes(nil)
		board[3].Index = board[2].Index

		resp, body := post(t, ts.URL+"/best-move/", communication.BestMoveRequest{Board: board, Player: 1})

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, string(body), "duplicate index")
	})

	t.Run("invalid player is rejected", func(t *testing.T) {
		resp, _ := post(t, ts.URL+"/best-move/", communication.BestMoveRequest{Board: hexes(nil), Player: 3, Players: 2})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = post(t, ts.URL+"/best-move/", communication.BestMoveRequest{Board: hexes(nil), Player: 0})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("finished game has no move", func(t *testing.T) {
		resp, body := post(t, ts.URL+"/best-move/", communication.BestMoveRequest{
			Board:   hexes(map[int]int{2: 1, 3: 1, 4: 1, 0: 2, 6: 2}),
			Player:  2,
			Players: 2,
		})

		require.Equal(t, http.StatusConflict, resp.StatusCode)
		var out communication.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &out))
		require.Equal(t, "No valid move found.", out.Error)
	})

	t.Run("garbage body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/best-move/", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("client surfaces server errors", func(t *testing.T) {
		_, err := c.BestMove(ctx, communication.BestMoveRequest{Board: hexes(nil), Player: 5})
		require.ErrorContains(t, err, "status 400")
	})
}

func TestSessions(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts.URL+"/games", communication.CreateGameRequest{Radius: 1, Players: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created communication.GameView
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)
	require.Len(t, created.Board, 7)
	require.Equal(t, 1, created.Player)
	require.Equal(t, []int{}, created.Conceded)

	t.Run("get returns the game", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/games/" + created.ID)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown game is not found", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/games/nope")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("moves are validated", func(t *testing.T) {
		resp, _ := post(t, ts.URL+"/games/"+created.ID+"/moves", communication.MoveRequest{Player: 2, Index: 3})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		resp, body := post(t, ts.URL+"/games/"+created.ID+"/moves", communication.MoveRequest{Player: 1, Index: 3})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var v communication.GameView
		require.NoError(t, json.Unmarshal(body, &v))
		require.Equal(t, 2, v.Player)
		require.Equal(t, 1, v.Board[3].Owner)

		resp, _ = post(t, ts.URL+"/games/"+created.ID+"/moves", communication.MoveRequest{Player: 2, Index: 3})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("concede ends a two player game", func(t *testing.T) {
		resp, body := post(t, ts.URL+"/games/"+created.ID+"/concede", communication.ConcedeRequest{Player: 2})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var v communication.GameView
		require.NoError(t, json.Unmarshal(body, &v))
		require.True(t, v.Over)
		require.Equal(t, 1, v.Winner)
		require.Equal(t, 0, v.Player)
		require.Equal(t, []int{2}, v.Conceded)

		resp, _ = post(t, ts.URL+"/games/"+created.ID+"/moves", communication.MoveRequest{Player: 2, Index: 0})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("bad seat kind", func(t *testing.T) {
		resp, _ := post(t, ts.URL+"/games", communication.CreateGameRequest{Radius: 1, Players: 2, Seats: []string{"human", "wizard"}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestWatch(t *testing.T) {
	ts := newTestServer(t)
	_, body := post(t, ts.URL+"/games", communication.CreateGameRequest{Radius: 2, Players: 2, Seats: []string{"human", "center"}})
	var created communication.GameView
	require.NoError(t, json.Unmarshal(body, &created))

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/" + created.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first communication.GameView
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, created.ID, first.ID)
	require.Zero(t, first.Moves)

	resp, _ := post(t, ts.URL+"/games/"+created.ID+"/moves", communication.MoveRequest{Player: 1, Index: 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var human, ai communication.GameView
	require.NoError(t, conn.ReadJSON(&human))
	require.Equal(t, 1, human.Moves)
	require.NoError(t, conn.ReadJSON(&ai))
	require.Equal(t, 2, ai.Moves)
	require.Equal(t, 1, ai.Player)
}

func TestWatchFinishedGame(t *testing.T) {
	ts := newTestServer(t)
	_, body := post(t, ts.URL+"/games", communication.CreateGameRequest{Radius: 1, Players: 2})
	var created communication.GameView
	require.NoError(t, json.Unmarshal(body, &created))
	resp, _ := post(t, ts.URL+"/games/"+created.ID+"/concede", communication.ConcedeRequest{Player: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/" + created.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var last communication.GameView
	require.NoError(t, conn.ReadJSON(&last))
	require.True(t, last.Over)
	require.Equal(t, 2, last.Winner)

	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "Connection should close after the final view, got %v", err)
}

func TestNewer(t *testing.T) {
	shown := gamemaster.Snapshot{Moves: 3}

	require.False(t, newer(gamemaster.Snapshot{Moves: 2}, shown))
	require.False(t, newer(gamemaster.Snapshot{Moves: 3}, shown))
	require.True(t, newer(gamemaster.Snapshot{Moves: 4}, shown))
	require.True(t, newer(gamemaster.Snapshot{Moves: 3, Conceded: []game.Player{game.Two}}, shown))
	require.False(t, newer(shown, gamemaster.Snapshot{Moves: 3, Conceded: []game.Player{game.Two}}))
}
