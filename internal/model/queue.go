package model

import (
	"sync"
	"time"
)

type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.Player.ID == player.ID {
			return ErrAlreadyQueued
		}
	}

	q.players = append(q.players, QueuedPlayer{
		Player:   player,
		JoinedAt: time.Now(),
	})
	return nil
}

// RemovePlayer drops playerID from the queue and reports whether it was there.
func (q *Queue) RemovePlayer(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.players {
		if p.Player.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return true
		}
	}
	return false
}

// GetNextPair pops the two longest-waiting players accepted by ready, leaving
// everyone else queued in order. A nil ready accepts every player.
func (q *Queue) GetNextPair(ready func(Player) bool) (Player, Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var picked []int
	for i, p := range q.players {
		if ready == nil || ready(p.Player) {
			picked = append(picked, i)
			if len(picked) == 2 {
				break
			}
		}
	}
	if len(picked) < 2 {
		return Player{}, Player{}, false
	}
	player1 := q.players[picked[0]].Player
	player2 := q.players[picked[1]].Player

	remaining := make([]QueuedPlayer, 0, len(q.players)-2)
	for i, p := range q.players {
		if i != picked[0] && i != picked[1] {
			remaining = append(remaining, p)
		}
	}
	q.players = remaining

	return player1, player2, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
