package engine

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", engine.GetScore())
	}
	if engine.IsGameOver() || engine.IsVictory() {
		t.Error("Expected game not to be over initially")
	}
	if engine.GetStatus() != StatusPlaying {
		t.Errorf("Expected playing, got %s", engine.GetStatus())
	}
	if engine.GetSecondsLeft() != DefaultTimeLimit {
		t.Errorf("Expected %d seconds, got %d", DefaultTimeLimit, engine.GetSecondsLeft())
	}
	if engine.GetBearPosition() != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected bear at (0,0), got %s", engine.GetBearPosition())
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Layout = nil
	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_ClassicFourCorrectAnswers(t *testing.T) {
	engine := NewEngineWithDefaults()

	steps := []struct {
		move   string
		answer string
	}{
		{"right", ""},
		{"right", "whose"},
		{"down", "who"},
		{"down", ""},
		{"down", "which"},
		{"left", ""},
		{"left", "whom"},
	}

	for i, step := range steps {
		if !engine.Move(step.move) {
			t.Fatalf("step %d: move %s rejected", i, step.move)
		}
		if step.answer == "" {
			continue
		}
		q := engine.GetActiveQuestion()
		if q == nil {
			t.Fatalf("step %d: expected a question", i)
		}
		if want := engine.GetConfig().Questions[q.PoolIndex].Answer; want != step.answer {
			t.Fatalf("step %d: expected answer %q, question wants %q", i, step.answer, want)
		}
		if !engine.Answer(step.answer) {
			t.Fatalf("step %d: answer rejected", i)
		}
	}

	if engine.GetScore() != 4 {
		t.Errorf("Expected score 4, got %d", engine.GetScore())
	}
	if got := engine.GetState().UsedQuestions; len(got) != 4 {
		t.Errorf("Expected 4 used questions, got %v", got)
	}
	if engine.GetBearPosition() != (Position{Row: 3, Col: 0}) {
		t.Errorf("Expected bear at (3,0), got %s", engine.GetBearPosition())
	}
}

func TestEngine_GetStateIsSnapshot(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.Move("right")
	engine.Move("right") // question

	snapshot := engine.GetState()
	snapshot.Board[0][0] = Pot
	snapshot.BearPos = Position{Row: 5, Col: 5}
	snapshot.ActiveQuestion.Options[0] = "mutated"
	snapshot.UsedQuestions = append(snapshot.UsedQuestions, 3)

	fresh := engine.GetState()
	if fresh.Board[0][0] != Empty {
		t.Error("Expected board to be unaffected by snapshot mutation")
	}
	if fresh.BearPos != (Position{Row: 0, Col: 1}) {
		t.Errorf("Expected bear at (0,1), got %s", fresh.BearPos)
	}
	if fresh.ActiveQuestion.Options[0] != "which" {
		t.Error("Expected question options to be unaffected")
	}
	if len(fresh.UsedQuestions) != 0 {
		t.Error("Expected used questions to be unaffected")
	}
	if engine.GetConfig().Questions[0].Options[0] != "which" {
		t.Error("Expected config pool to be unaffected")
	}
}

func TestEngine_MoveHistoryRecordsAcceptedActions(t *testing.T) {
	engine := NewEngineWithDefaults()

	engine.Move("up")    // out of bounds, not recorded
	engine.Move("right") // moved
	engine.Move("right") // question
	engine.Answer("nope")
	engine.Answer("which") // incorrect

	history := engine.GetMoveHistory()
	if len(history) != 3 {
		t.Fatalf("Expected 3 history entries, got %d: %+v", len(history), history)
	}
	wantOutcomes := []string{"moved", "question", "incorrect"}
	for i, want := range wantOutcomes {
		if history[i].Outcome != want {
			t.Errorf("entry %d: expected outcome %q, got %q", i, want, history[i].Outcome)
		}
		if history[i].MoveNumber != i+1 {
			t.Errorf("entry %d: expected move number %d, got %d", i, i+1, history[i].MoveNumber)
		}
	}
	if last := engine.GetLastMove(); last == nil || last.Action != "answer" {
		t.Errorf("Expected last action to be an answer, got %+v", last)
	}
}

func TestEngine_ResetPreservesCumulativeHistory(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.Move("right")
	engine.Move("right")
	engine.Answer("whose")

	state := engine.Reset()
	if state.Score != 0 || state.SecsLeft != DefaultTimeLimit || state.Status != StatusPlaying {
		t.Errorf("Expected fresh game after reset, got score=%d secs=%d status=%s", state.Score, state.SecsLeft, state.Status)
	}
	if len(state.UsedQuestions) != 0 || state.ActiveQuestion != nil {
		t.Error("Expected question state to be cleared")
	}
	if state.BearPos != (Position{Row: 0, Col: 0}) || state.Board[0][2] != Question {
		t.Error("Expected board to be restored")
	}
	if state.TotalMoves != 3 || len(state.MoveHistory) != 3 {
		t.Errorf("Expected cumulative history of 3, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Error("Expected current segment to be cleared")
	}
}

func TestEngine_CanMoveAndPossibleMoves(t *testing.T) {
	engine := NewEngineWithDefaults()

	possible := engine.GetPossibleMoves()
	if len(possible) != 2 || possible[0] != "down" || possible[1] != "right" {
		t.Errorf("Expected [down right], got %v", possible)
	}
	if engine.CanMove("up") || engine.CanMove("sideways") {
		t.Error("Expected up and unknown directions to be impossible")
	}

	engine.Move("right")
	engine.Move("right") // question pending
	if got := engine.GetPossibleMoves(); len(got) != 0 {
		t.Errorf("Expected no moves while a question is pending, got %v", got)
	}
}

func TestEngine_BulkMove(t *testing.T) {
	t.Run("stops at question", func(t *testing.T) {
		engine := NewEngineWithDefaults()
		results := engine.BulkMove([]string{"right", "right", "down", "down"})
		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %v", results)
		}
		if results[0] != MoveMoved || results[1] != MoveQuestion {
			t.Errorf("Unexpected outcomes %v", results)
		}
	})

	t.Run("stops at block", func(t *testing.T) {
		engine := NewEngineWithDefaults()
		results := engine.BulkMove([]string{"down", "down", "right"})
		if len(results) != 2 || results[1] != MoveBlocked {
			t.Errorf("Expected block on second move, got %v", results)
		}
		if engine.GetBearPosition() != (Position{Row: 1, Col: 0}) {
			t.Errorf("Expected bear at (1,0), got %s", engine.GetBearPosition())
		}
	})

	t.Run("wins on open board", func(t *testing.T) {
		engine, err := NewEngine(openConfig())
		if err != nil {
			t.Fatal(err)
		}
		results := engine.BulkMove([]string{"down", "down", "down", "down", "down", "right", "right", "right", "right", "up"})
		if len(results) != 9 || results[8] != MoveWon {
			t.Errorf("Expected win on ninth move, got %v", results)
		}
		if !engine.IsVictory() {
			t.Error("Expected victory")
		}
	})
}

func TestEngine_SetState(t *testing.T) {
	engine := NewEngineWithDefaults()

	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}

	state := engine.GetState()
	state.SecsLeft = MaxTimeLimit + 1
	if err := engine.SetState(state); err == nil {
		t.Error("Expected error for out of range timer")
	}

	state = engine.GetState()
	state.SecsLeft = 30
	state.Pool = nil
	if err := engine.SetState(state); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if engine.GetSecondsLeft() != 30 {
		t.Errorf("Expected 30 seconds, got %d", engine.GetSecondsLeft())
	}
	// Pool is restored from config so question cells still work
	engine.Move("right")
	if outcome := engine.TryMove("right"); outcome != MoveQuestion {
		t.Errorf("Expected question after SetState, got %q", outcome)
	}
}

func TestEngine_SetStateRejectsUnreachableStates(t *testing.T) {
	engine := NewEngineWithDefaults()
	pending := func() *ActiveQuestion {
		return &ActiveQuestion{Target: Position{Row: 0, Col: 2}, Prompt: "p", Options: []string{"a"}, PoolIndex: 0}
	}

	tests := []struct {
		name   string
		mutate func(*GameState)
	}{
		{"question after timeout", func(s *GameState) {
			s.Status = StatusTimedOut
			s.ActiveQuestion = pending()
		}},
		{"pool index out of range", func(s *GameState) {
			q := pending()
			q.PoolIndex = 99
			s.ActiveQuestion = q
		}},
		{"question target not a question cell", func(s *GameState) {
			q := pending()
			q.Target = Position{Row: 0, Col: 1}
			s.ActiveQuestion = q
		}},
		{"no bear", func(s *GameState) {
			s.Board.Set(s.BearPos, Empty)
		}},
		{"two bears", func(s *GameState) {
			s.Board.Set(Position{Row: 0, Col: 1}, Bear)
		}},
		{"bear position disagrees with board", func(s *GameState) {
			s.BearPos = Position{Row: 0, Col: 1}
		}},
		{"won off the pot", func(s *GameState) {
			s.Status = StatusWon
		}},
		{"unknown status", func(s *GameState) {
			s.Status = "paused"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := engine.GetState()
			tt.mutate(state)
			if err := engine.SetState(state); err == nil {
				t.Error("Expected SetState to reject the state")
			}
		})
	}

	// A well-formed pending question is accepted and can be answered
	state := engine.GetState()
	state.ActiveQuestion = pending()
	if err := engine.SetState(state); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if engine.GetActiveQuestion() == nil {
		t.Fatal("Expected pending question after SetState")
	}
	if outcome := engine.TryMove("down"); outcome != MoveRejected {
		t.Errorf("Expected move to be rejected while a question is pending, got %q", outcome)
	}
}

func TestEngine_SetConfig(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.Move("right")

	if err := engine.SetConfig(openConfig()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if engine.GetState().ConfigName != "open" {
		t.Error("Expected config switch")
	}
	if engine.GetBearPosition() != (Position{Row: 0, Col: 0}) {
		t.Error("Expected fresh state after config switch")
	}

	bad := openConfig()
	bad.Name = ""
	if err := engine.SetConfig(bad); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_Tick(t *testing.T) {
	config := openConfig()
	config.TimeLimit = 2
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatal(err)
	}

	engine.Tick()
	engine.Tick()
	if engine.GetStatus() != StatusTimedOut {
		t.Fatalf("Expected timed out, got %s", engine.GetStatus())
	}
	if engine.Tick() {
		t.Error("Expected tick after timeout to report stopped")
	}
	if engine.Move("down") {
		t.Error("Expected moves to be ignored after timeout")
	}
}

func TestEngine_ClockTimesOut(t *testing.T) {
	config := openConfig()
	config.TimeLimit = 3
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var seen []int
	done := make(chan struct{})
	engine.StartClock(context.Background(), 5*time.Millisecond, func(s *GameState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.SecsLeft)
		if s.Status == StatusTimedOut {
			close(done)
		}
	})
	defer engine.StopClock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clock never timed out")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || seen[0] != 2 || seen[2] != 0 {
		t.Errorf("Expected ticks [2 1 0], got %v", seen)
	}
}

func TestEngine_ClockStopsOnWin(t *testing.T) {
	engine, err := NewEngine(openConfig())
	if err != nil {
		t.Fatal(err)
	}

	engine.StartClock(context.Background(), time.Hour, nil)
	engine.BulkMove([]string{"down", "down", "down", "down", "down", "right", "right", "right", "right"})

	engine.mu.Lock()
	clock := engine.clock
	engine.mu.Unlock()
	if clock != nil {
		t.Error("Expected clock to be released after the winning move")
	}
	engine.StopClock()
}

func TestEngine_StopClockHaltsTicks(t *testing.T) {
	engine := NewEngineWithDefaults()
	engine.StartClock(context.Background(), time.Millisecond, nil)
	time.Sleep(20 * time.Millisecond)
	engine.StopClock()

	secs := engine.GetSecondsLeft()
	time.Sleep(20 * time.Millisecond)
	if engine.GetSecondsLeft() != secs {
		t.Error("Expected no ticks after StopClock")
	}
	if secs >= DefaultTimeLimit {
		t.Error("Expected clock to have ticked before stopping")
	}
}

func TestEngine_ResetRestartsClock(t *testing.T) {
	config := openConfig()
	config.TimeLimit = 1
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatal(err)
	}

	timedOut := make(chan struct{}, 2)
	engine.StartClock(context.Background(), 5*time.Millisecond, func(s *GameState) {
		if s.Status == StatusTimedOut {
			timedOut <- struct{}{}
		}
	})
	defer engine.StopClock()

	<-timedOut
	engine.Reset()
	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected clock to run again after reset")
	}
}
