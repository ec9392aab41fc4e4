package service

import (
	"time"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"-"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool              `json:"success"`
	Outcome       string            `json:"outcome"`
	GameState     *engine.GameState `json:"game_state"`
	Message       string            `json:"message"`
	Events        []GameEvent       `json:"events,omitempty"`
	Step          *StepInfo         `json:"step,omitempty"`
	AttemptedTo   *AttemptInfo      `json:"attempted_to,omitempty"`
	PossibleMoves []string          `json:"possible_moves"`
}

// AnswerResult contains the result of an answer submission
type AnswerResult struct {
	Success   bool              `json:"success"`
	Outcome   string            `json:"outcome"`
	Correct   bool              `json:"correct"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	// PossibleMoves is only meaningful once the question is resolved
	PossibleMoves []string `json:"possible_moves"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // question|blocked_rock|blocked_boundary|invalid_direction|question_pending|victory|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	ScoreDelta int             `json:"score_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver       bool                   `json:"game_over"`
	GameOverCode   string                 `json:"game_over_code,omitempty"`
	Message        string                 `json:"message,omitempty"`
	ActiveQuestion *engine.ActiveQuestion `json:"active_question,omitempty"`
	PossibleMoves  []string               `json:"possible_moves,omitempty"`
	LocalView3x3   []string               `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx      int             `json:"idx"`
	Dir      string          `json:"dir"`
	From     engine.Position `json:"from"`
	To       engine.Position `json:"to"`
	TileChar string          `json:"tile_char"`
	TileType string          `json:"tile_type"`
	Outcome  string          `json:"outcome"`
	Success  bool            `json:"success"`
	Question bool            `json:"question,omitempty"`
	Victory  bool            `json:"victory,omitempty"`
}

// AttemptInfo details the target cell of a rejected move
type AttemptInfo struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "question", "answer_correct", "answer_incorrect", "victory", "timeout", "blocked", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename      string `json:"filename,omitempty"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	TimeLimit     int    `json:"time_limit"`
	QuestionCount int    `json:"question_count"`
	PotReachable  bool   `json:"pot_reachable"`
}
