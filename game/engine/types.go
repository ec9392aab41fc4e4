package engine

import "fmt"

// CellKind represents the contents of a single board cell
type CellKind string

const (
	Empty    CellKind = "empty"
	Rock     CellKind = "rock"
	Question CellKind = "question"
	Bear     CellKind = "bear"
	Pot      CellKind = "pot"

	// Board and timer constants
	BoardSize          = 6
	DefaultTimeLimit   = 1200
	MaxTimeLimit       = 1200
	OptionsPerQuestion = 4
	MaxBulkMoves       = 50
)

// Status is the lifecycle state of a game
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusWon      Status = "won"
	StatusTimedOut Status = "timed_out"
)

// IsTerminal reports whether no further input is accepted
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusTimedOut
}

// Direction is one of the four unit moves
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists all directions in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the row/col offset for the direction
func (d Direction) Delta() (int, int, bool) {
	switch d {
	case Up:
		return -1, 0, true
	case Down:
		return 1, 0, true
	case Left:
		return 0, -1, true
	case Right:
		return 0, 1, true
	}
	return 0, 0, false
}

// Position is a 0-indexed (row, col) pair
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Add returns the position shifted by one step in direction d
func (p Position) Add(d Direction) Position {
	dr, dc, _ := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// InBounds reports whether p lies on the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Board is the fixed 6x6 grid of cell kinds, indexed [row][col]
type Board [BoardSize][BoardSize]CellKind

// At returns the kind at p; p must be in bounds
func (b *Board) At(p Position) CellKind {
	return b[p.Row][p.Col]
}

// Set writes the kind at p; p must be in bounds
func (b *Board) Set(p Position, kind CellKind) {
	b[p.Row][p.Col] = kind
}

// QuestionItem is a static multiple-choice prompt from the pool
type QuestionItem struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options" yaml:"options"`
	Answer  string   `json:"answer" yaml:"answer"`
}

// HasOption reports whether option is one of the listed choices
func (q QuestionItem) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// ActiveQuestion is the pending prompt that gates movement. The correct
// answer stays in the pool and is never part of a snapshot.
type ActiveQuestion struct {
	Target    Position `json:"target"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	PoolIndex int      `json:"pool_index"`
}

// HasOption reports whether option is one of the listed choices
func (a *ActiveQuestion) HasOption(option string) bool {
	for _, o := range a.Options {
		if o == option {
			return true
		}
	}
	return false
}

// GameState represents the complete game state
type GameState struct {
	Board          Board           `json:"board"`
	BearPos        Position        `json:"bear_pos"`
	ActiveQuestion *ActiveQuestion `json:"active_question"`
	UsedQuestions  []int           `json:"used_questions"`
	Score          int             `json:"score"`
	Status         Status          `json:"status"`
	SecsLeft       int             `json:"secs_left"`
	Message        string          `json:"message"`
	ConfigName     string          `json:"config_name"`

	// Pool is the ordered question list for this playthrough
	Pool []QuestionItem `json:"-"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the actions since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	Remaining    string   `json:"remaining,omitempty"`
	LocalView3x3 []string `json:"local_view_3x3,omitempty"`

	messages Messages
}

// MoveHistoryEntry records a single move or answer
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	Input        string   `json:"input"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Outcome      string   `json:"outcome"`
	Score        int      `json:"score"`
	SecsLeft     int      `json:"secs_left"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}

// SurroundingCell represents a cell with its absolute position
type SurroundingCell struct {
	Row  int      `json:"row"`
	Col  int      `json:"col"`
	Kind CellKind `json:"kind"`
}

func (a *ActiveQuestion) clone() *ActiveQuestion {
	if a == nil {
		return nil
	}
	return &ActiveQuestion{
		Target:    a.Target,
		Prompt:    a.Prompt,
		Options:   append([]string{}, a.Options...),
		PoolIndex: a.PoolIndex,
	}
}

// Clone returns a deep copy of the state. The board is an array so it copies by value;
// slices and the active question are duplicated. The question pool is shared read-only.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.ActiveQuestion = gs.ActiveQuestion.clone()
	c.UsedQuestions = append([]int{}, gs.UsedQuestions...)
	c.MoveHistory = append([]MoveHistoryEntry{}, gs.MoveHistory...)
	c.CurrentMoves = append([]MoveHistoryEntry{}, gs.CurrentMoves...)
	if gs.LocalView3x3 != nil {
		c.LocalView3x3 = append([]string{}, gs.LocalView3x3...)
	}
	c.Remaining = FormatClock(gs.SecsLeft)
	return &c
}
