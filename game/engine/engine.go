package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetScore() int
	GetSecondsLeft() int
	GetStatus() Status
	GetBearPosition() Position
	GetActiveQuestion() *ActiveQuestion

	// Player input
	Move(direction string) bool
	TryMove(direction string) MoveOutcome
	CanMove(direction string) bool
	GetPossibleMoves() []string
	BulkMove(moves []string) []MoveOutcome
	Answer(option string) bool
	TryAnswer(option string) AnswerOutcome

	// Clock
	Tick() bool
	StartClock(ctx context.Context, interval time.Duration, notify func(*GameState))
	StopClock()

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Local view
	GetLocalView() []SurroundingCell
}

type clockSettings struct {
	ctx      context.Context
	interval time.Duration
	notify   func(*GameState)
}

// GameEngine implements the Engine interface. All transitions run under one
// mutex; readers only ever see deep copies of the state.
type GameEngine struct {
	mu     sync.Mutex
	state  *GameState
	config *GameConfig

	clock         *Countdown
	clockGen      uint64
	clockSettings *clockSettings
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine on the classic board
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// SetState replaces the game state. The question pool and messages are
// taken from the engine's config, since they are not part of the wire form.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	var poolSize int
	if e.config != nil {
		poolSize = len(e.config.Questions)
	}
	if err := validateState(state, poolSize); err != nil {
		return err
	}

	next := state.Clone()
	if e.config != nil {
		next.Pool = e.config.Questions
		next.messages = e.config.Messages.WithDefaults()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = next
	if !e.state.Status.IsTerminal() {
		e.restartClockLocked()
	} else {
		e.cancelClockLocked()
	}
	return nil
}

// validateState rejects states no sequence of transitions could reach
func validateState(state *GameState, poolSize int) error {
	if !state.BearPos.InBounds() {
		return fmt.Errorf("bear position %s is off the board", state.BearPos)
	}
	if state.SecsLeft < 0 || state.SecsLeft > MaxTimeLimit {
		return fmt.Errorf("secs_left must be between 0 and %d, got %d", MaxTimeLimit, state.SecsLeft)
	}
	switch state.Status {
	case StatusPlaying, StatusWon, StatusTimedOut:
	default:
		return fmt.Errorf("unknown status %q", state.Status)
	}

	bears := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if state.Board[r][c] == Bear {
				bears++
			}
		}
	}
	// A won bear stands on the pot, which keeps its kind
	if state.Status == StatusWon {
		if bears != 0 || state.Board.At(state.BearPos) != Pot {
			return fmt.Errorf("won state must have the bear on the pot")
		}
	} else if bears != 1 || state.Board.At(state.BearPos) != Bear {
		return fmt.Errorf("board must hold exactly one bear at %s, found %d", state.BearPos, bears)
	}

	if q := state.ActiveQuestion; q != nil {
		if state.Status != StatusPlaying {
			return fmt.Errorf("a finished game cannot have a pending question")
		}
		if q.PoolIndex < 0 || q.PoolIndex >= poolSize {
			return fmt.Errorf("question pool index %d out of range [0,%d)", q.PoolIndex, poolSize)
		}
		if !q.Target.InBounds() || state.Board.At(q.Target) != Question {
			return fmt.Errorf("question target %s is not a question cell", q.Target)
		}
	}
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	// Reinitialize core state from config
	e.state = InitGameStateFromConfig(e.config)

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	e.restartClockLocked()

	return e.state.Clone()
}

// IsGameOver returns whether the game reached a terminal status
func (e *GameEngine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Status.IsTerminal()
}

// IsVictory returns whether the bear reached the pot
func (e *GameEngine) IsVictory() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Status == StatusWon
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Score
}

// GetSecondsLeft returns the remaining time
func (e *GameEngine) GetSecondsLeft() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.SecsLeft
}

// GetStatus returns the game status
func (e *GameEngine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Status
}

// GetBearPosition returns the current bear position
func (e *GameEngine) GetBearPosition() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.BearPos
}

// GetActiveQuestion returns a copy of the pending question, or nil
func (e *GameEngine) GetActiveQuestion() *ActiveQuestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ActiveQuestion.clone()
}

// Move attempts to move the bear in the specified direction and reports
// whether the state changed.
func (e *GameEngine) Move(direction string) bool {
	return e.TryMove(direction).Changed()
}

// TryMove attempts a move and returns its outcome
func (e *GameEngine) TryMove(direction string) MoveOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moveLocked(direction)
}

func (e *GameEngine) moveLocked(direction string) MoveOutcome {
	prevPos := e.state.BearPos
	outcome := e.state.ApplyMove(Direction(direction))
	if !outcome.Changed() {
		return outcome
	}

	e.state.AddMoveToHistory("move", direction, prevPos, e.state.BearPos, string(outcome))
	if e.state.Status.IsTerminal() {
		e.cancelClockLocked()
	}
	return outcome
}

// CanMove checks if the bear can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canMoveLocked(Direction(direction))
}

func (e *GameEngine) canMoveLocked(dir Direction) bool {
	if e.state.Status != StatusPlaying || e.state.ActiveQuestion != nil {
		return false
	}
	if _, _, ok := dir.Delta(); !ok {
		return false
	}
	return e.state.CanMoveTo(e.state.BearPos.Add(dir))
}

// GetPossibleMoves returns all valid directions the bear can move
func (e *GameEngine) GetPossibleMoves() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	possible := []string{}
	for _, dir := range Directions {
		if e.canMoveLocked(dir) {
			possible = append(possible, string(dir))
		}
	}
	return possible
}

// BulkMove executes moves in sequence. It stops after the first move that does
// not land on an empty cell: a question, a block, a win or a rejection.
func (e *GameEngine) BulkMove(moves []string) []MoveOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]MoveOutcome, 0, len(moves))
	for _, direction := range moves {
		outcome := e.moveLocked(direction)
		results = append(results, outcome)
		if outcome != MoveMoved {
			break
		}
	}
	return results
}

// Answer submits an option for the pending question and reports whether it was accepted
func (e *GameEngine) Answer(option string) bool {
	return e.TryAnswer(option).Changed()
}

// TryAnswer submits an option and returns its outcome
func (e *GameEngine) TryAnswer(option string) AnswerOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	prevPos := e.state.BearPos
	outcome := e.state.ApplyAnswer(option)
	if outcome.Changed() {
		e.state.AddMoveToHistory("answer", option, prevPos, e.state.BearPos, string(outcome))
	}
	return outcome
}

// Tick advances the clock by one second. It returns false once the game has
// left the playing state.
func (e *GameEngine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	running := e.state.Tick()
	if e.state.Status.IsTerminal() {
		e.cancelClockLocked()
	}
	return running
}

// StartClock runs the countdown in the background until the game ends,
// StopClock is called or ctx is done. notify, if set, receives a snapshot
// after every tick; it is called without the engine lock held.
func (e *GameEngine) StartClock(ctx context.Context, interval time.Duration, notify func(*GameState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clockSettings = &clockSettings{ctx: ctx, interval: interval, notify: notify}
	e.restartClockLocked()
}

// StopClock cancels the countdown and waits for it to exit. Reset will not
// restart it afterwards.
func (e *GameEngine) StopClock() {
	e.mu.Lock()
	c := e.clock
	e.clock = nil
	e.clockGen++
	e.clockSettings = nil
	e.mu.Unlock()

	// Waiting must happen outside the lock, the tick goroutine may be blocked on it.
	if c != nil {
		c.Stop()
	}
}

func (e *GameEngine) restartClockLocked() {
	e.cancelClockLocked()
	if e.clockSettings == nil || e.state.Status != StatusPlaying {
		return
	}

	settings := e.clockSettings
	gen := e.clockGen
	e.clock = StartCountdown(settings.ctx, settings.interval, func() bool {
		return e.clockTick(gen, settings.notify)
	})
}

func (e *GameEngine) cancelClockLocked() {
	e.clockGen++
	if e.clock != nil {
		e.clock.Cancel()
		e.clock = nil
	}
}

func (e *GameEngine) clockTick(gen uint64, notify func(*GameState)) bool {
	e.mu.Lock()
	if e.clock == nil || e.clockGen != gen {
		// Superseded by a reset or stopped
		e.mu.Unlock()
		return false
	}
	changed := e.state.Tick()
	running := e.state.Status == StatusPlaying
	if !running {
		e.clock = nil
		e.clockGen++
	}
	var snapshot *GameState
	if changed {
		snapshot = e.state.Clone()
	}
	e.mu.Unlock()

	if snapshot != nil && notify != nil {
		notify(snapshot)
	}
	return running
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
	e.state = InitGameStateFromConfig(config)
	e.restartClockLocked()
	return nil
}

// GetMoveHistory returns the complete cumulative history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := make([]MoveHistoryEntry, len(e.state.MoveHistory))
	copy(history, e.state.MoveHistory)
	return history
}

// GetLastMove returns the last accepted action, or nil if none
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	last := e.state.MoveHistory[len(e.state.MoveHistory)-1]
	return &last
}

// GetLocalView returns the eight cells around the bear
func (e *GameEngine) GetLocalView() []SurroundingCell {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GenerateLocalView()
}
