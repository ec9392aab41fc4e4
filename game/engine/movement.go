package engine

import (
	"fmt"
	"time"
)

// MoveOutcome describes what a move attempt did to the state
type MoveOutcome string

const (
	MoveRejected    MoveOutcome = "rejected"
	MoveInvalid     MoveOutcome = "invalid_direction"
	MoveOutOfBounds MoveOutcome = "out_of_bounds"
	MoveBlocked     MoveOutcome = "blocked"
	MoveQuestion    MoveOutcome = "question"
	MoveMoved       MoveOutcome = "moved"
	MoveWon         MoveOutcome = "won"
)

// Changed reports whether the outcome mutated the state
func (o MoveOutcome) Changed() bool {
	return o == MoveQuestion || o == MoveMoved || o == MoveWon
}

// AnswerOutcome describes what an answer submission did to the state
type AnswerOutcome string

const (
	AnswerRejected      AnswerOutcome = "rejected"
	AnswerInvalidOption AnswerOutcome = "invalid_option"
	AnswerCorrect       AnswerOutcome = "correct"
	AnswerIncorrect     AnswerOutcome = "incorrect"
)

// Changed reports whether the outcome mutated the state
func (o AnswerOutcome) Changed() bool {
	return o == AnswerCorrect || o == AnswerIncorrect
}

// CanMoveTo checks if the bear may step onto p. Question cells count as passable.
func (gs *GameState) CanMoveTo(p Position) bool {
	if !p.InBounds() {
		return false
	}
	return gs.Board.At(p) != Rock
}

// ApplyMove attempts to move the bear one step. Invalid input leaves the state untouched.
func (gs *GameState) ApplyMove(dir Direction) MoveOutcome {
	if gs.Status != StatusPlaying || gs.ActiveQuestion != nil {
		return MoveRejected
	}
	if _, _, ok := dir.Delta(); !ok {
		return MoveInvalid
	}

	target := gs.BearPos.Add(dir)
	if !target.InBounds() {
		return MoveOutOfBounds
	}

	switch gs.Board.At(target) {
	case Rock:
		return MoveBlocked

	case Pot:
		// The pot keeps its kind; the vacated cell is cleared so the bear is never drawn twice.
		gs.Board.Set(gs.BearPos, Empty)
		gs.BearPos = target
		gs.Status = StatusWon
		gs.Message = fmt.Sprintf(gs.feedback().Victory, gs.Score)
		return MoveWon

	case Question:
		if len(gs.Pool) == 0 {
			return MoveRejected
		}
		idx := NextQuestionIndex(len(gs.Pool), gs.UsedQuestions)
		gs.ActiveQuestion = ask(gs.Pool, idx, target)
		gs.Message = gs.feedback().Question
		return MoveQuestion

	default:
		gs.Board.Set(gs.BearPos, Empty)
		gs.Board.Set(target, Bear)
		gs.BearPos = target
		gs.Message = fmt.Sprintf(gs.feedback().Moved, target.Row, target.Col)
		return MoveMoved
	}
}

// ApplyAnswer resolves the pending question with the selected option
func (gs *GameState) ApplyAnswer(option string) AnswerOutcome {
	if gs.Status != StatusPlaying || gs.ActiveQuestion == nil {
		return AnswerRejected
	}
	active := gs.ActiveQuestion
	if active.PoolIndex < 0 || active.PoolIndex >= len(gs.Pool) {
		return AnswerRejected
	}
	if !active.HasOption(option) {
		return AnswerInvalidOption
	}

	answer := gs.Pool[active.PoolIndex].Answer
	outcome := AnswerIncorrect
	if option == answer {
		gs.Score++
		outcome = AnswerCorrect
		gs.Message = fmt.Sprintf(gs.feedback().Correct, gs.Score)
	} else {
		gs.Message = fmt.Sprintf(gs.feedback().Incorrect, answer)
	}

	gs.Board.Set(gs.BearPos, Empty)
	gs.Board.Set(active.Target, Bear)
	gs.BearPos = active.Target
	gs.UsedQuestions = markUsed(gs.UsedQuestions, active.PoolIndex)
	gs.ActiveQuestion = nil

	return outcome
}

// Tick advances the countdown by one second. It returns false once the game
// has left the playing state, meaning the caller should stop ticking.
func (gs *GameState) Tick() bool {
	if gs.Status != StatusPlaying {
		return false
	}
	if gs.SecsLeft > 0 {
		gs.SecsLeft--
	}
	if gs.SecsLeft == 0 {
		gs.Status = StatusTimedOut
		gs.ActiveQuestion = nil
		gs.Message = gs.feedback().TimeUp
	}
	return true
}

// GenerateLocalView creates list of 8 surrounding cells around the bear
func (gs *GameState) GenerateLocalView() []SurroundingCell {
	offsets := []struct{ dr, dc int }{
		{-1, 0},  // North
		{-1, 1},  // North-East
		{0, 1},   // East
		{1, 1},   // South-East
		{1, 0},   // South
		{1, -1},  // South-West
		{0, -1},  // West
		{-1, -1}, // North-West
	}

	surroundings := make([]SurroundingCell, len(offsets))
	for i, off := range offsets {
		p := Position{Row: gs.BearPos.Row + off.dr, Col: gs.BearPos.Col + off.dc}
		kind := Rock // Out of bounds = rock
		if p.InBounds() {
			kind = gs.Board.At(p)
		}
		surroundings[i] = SurroundingCell{Row: p.Row, Col: p.Col, Kind: kind}
	}

	return surroundings
}

// feedback returns the message set for this state, falling back to the stock lines
// for states that were decoded rather than built from a config.
func (gs *GameState) feedback() Messages {
	return gs.messages.WithDefaults()
}

// AddMoveToHistory adds an accepted action to the game's history
func (gs *GameState) AddMoveToHistory(action, input string, fromPos, toPos Position, outcome string) {
	entry := MoveHistoryEntry{
		Action:       action,
		Input:        input,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Outcome:      outcome,
		Score:        gs.Score,
		SecsLeft:     gs.SecsLeft,
		Timestamp:    time.Now().Unix(),
		Success:      true,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
