package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				// Provide helpful error message with available options
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      enrich(session.Engine.GetState()),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      enrich(session.Engine.GetState()),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      enrich(sess.Engine.GetState()),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// touch looks up a session and refreshes its last access time
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess, nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	prev := sess.Engine.GetState()
	outcome := sess.Engine.TryMove(direction)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   outcome.Changed(),
		Outcome:   string(outcome),
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}

	if outcome.Changed() {
		result.Events = append(result.Events, moveEvents(state, direction, outcome)...)
		result.Step = stepInfo(1, direction, prev, state, outcome)
	} else {
		result.Message = rejectionMessage(sess.Config, prev, outcome)
		result.AttemptedTo = attemptInfo(prev, direction)
		result.Events = append(result.Events, GameEvent{
			Type:      "blocked",
			Message:   result.Message,
			Timestamp: time.Now(),
			Position:  prev.BearPos,
		})
	}

	enrich(state)
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartPos = start.BearPos

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	normalized := make([]string, len(moves))
	for i, m := range moves {
		normalized[i] = strings.ToLower(strings.TrimSpace(m))
	}

	outcomes := sess.Engine.BulkMove(normalized)
	end := sess.Engine.GetState()

	// Replay the accepted part of the history to build the step trace
	history := end.MoveHistory
	executed := 0
	for _, o := range outcomes {
		if o.Changed() {
			executed++
		}
	}
	entries := history[len(history)-executed:]
	for i, entry := range entries {
		outcome := engine.MoveOutcome(entry.Outcome)
		tileChar, tileType := stepTile(outcome)
		to := entry.ToPosition
		if outcome == engine.MoveQuestion && end.ActiveQuestion != nil {
			to = end.ActiveQuestion.Target
		}
		result.Steps = append(result.Steps, StepInfo{
			Idx:      i + 1,
			Dir:      entry.Input,
			From:     entry.FromPosition,
			To:       to,
			TileChar: tileChar,
			TileType: tileType,
			Outcome:  entry.Outcome,
			Success:  true,
			Question: outcome == engine.MoveQuestion,
			Victory:  outcome == engine.MoveWon,
		})
		result.Events = append(result.Events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to %s", entry.Input, to),
			Timestamp: time.Now(),
			Position:  to,
		})
	}
	result.MovesExecuted = executed

	if len(outcomes) > 0 {
		last := outcomes[len(outcomes)-1]
		idx := len(outcomes)
		switch {
		case last == engine.MoveQuestion:
			result.StopReasonCode = "question"
			result.StoppedReason = fmt.Sprintf("move %d reached a question", idx)
			result.StoppedOnMove = idx
			result.Events = append(result.Events, questionEvent(end))
		case last == engine.MoveWon:
			result.StopReasonCode = "victory"
			result.GameOverCode = "victory"
			result.StoppedOnMove = idx
			result.Events = append(result.Events, victoryEvent(end))
		case !last.Changed():
			result.Success = false
			result.StoppedOnMove = idx
			result.StopReasonCode = stopCode(start, last)
			result.StoppedReason = fmt.Sprintf("move %d %s: %s", idx, last, normalized[idx-1])
			// The last move changed nothing, so the end snapshot shows what blocked it
			result.AttemptedTo = attemptInfo(end, normalized[idx-1])
			result.Events = append(result.Events, GameEvent{
				Type:      "blocked",
				Message:   result.StoppedReason,
				Timestamp: time.Now(),
				Position:  end.BearPos,
			})
		}
	}

	result.GameState = enrich(end)
	result.EndPos = end.BearPos
	result.ScoreDelta = end.Score - start.Score
	result.GameOver = end.Status.IsTerminal()
	if end.Status == engine.StatusTimedOut {
		result.GameOverCode = "timed_out"
	}
	result.Message = end.Message
	result.ActiveQuestion = end.ActiveQuestion
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = end.LocalView3x3

	return result, nil
}

// Answer submits an option for the pending question
func (s *gameServiceImpl) Answer(ctx context.Context, sessionID, option string) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	prev := sess.Engine.GetState()
	outcome := sess.Engine.TryAnswer(option)
	state := sess.Engine.GetState()

	result := &AnswerResult{
		Success:   outcome.Changed(),
		Outcome:   string(outcome),
		Correct:   outcome == engine.AnswerCorrect,
		GameState: enrich(state),
		Message:   state.Message,
	}

	switch outcome {
	case engine.AnswerCorrect:
		result.Events = []GameEvent{{
			Type:      "answer_correct",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  state.BearPos,
		}}
	case engine.AnswerIncorrect:
		result.Events = []GameEvent{{
			Type:      "answer_incorrect",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  state.BearPos,
		}}
	case engine.AnswerInvalidOption:
		result.Message = fmt.Sprintf("'%s' is not one of the options %v", option, prev.ActiveQuestion.Options)
	default:
		switch {
		case prev.Status.IsTerminal():
			result.Message = "The game is over. Reset to play again"
		default:
			result.Message = "There is no question to answer"
		}
	}

	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	return enrich(sess.Engine.Reset()), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	return enrich(sess.Engine.GetState()), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

func questionEvent(state *engine.GameState) GameEvent {
	ev := GameEvent{Type: "question", Timestamp: time.Now(), Position: state.BearPos}
	if q := state.ActiveQuestion; q != nil {
		ev.Message = fmt.Sprintf("%s %v", q.Prompt, q.Options)
		ev.Position = q.Target
	}
	return ev
}

func victoryEvent(state *engine.GameState) GameEvent {
	return GameEvent{
		Type:      "victory",
		Message:   state.Message,
		Timestamp: time.Now(),
		Position:  state.BearPos,
	}
}

// moveEvents generates events from an accepted move
func moveEvents(state *engine.GameState, direction string, outcome engine.MoveOutcome) []GameEvent {
	switch outcome {
	case engine.MoveQuestion:
		return []GameEvent{questionEvent(state)}
	case engine.MoveWon:
		return []GameEvent{
			{Type: "move", Message: fmt.Sprintf("Moved %s to %s", direction, state.BearPos), Timestamp: time.Now(), Position: state.BearPos},
			victoryEvent(state),
		}
	default:
		return []GameEvent{{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to %s", direction, state.BearPos),
			Timestamp: time.Now(),
			Position:  state.BearPos,
		}}
	}
}

func stepInfo(idx int, direction string, prev, state *engine.GameState, outcome engine.MoveOutcome) *StepInfo {
	to := state.BearPos
	tileChar, tileType := stepTile(outcome)
	if outcome == engine.MoveQuestion && state.ActiveQuestion != nil {
		to = state.ActiveQuestion.Target
	}
	return &StepInfo{
		Idx:      idx,
		Dir:      direction,
		From:     prev.BearPos,
		To:       to,
		TileChar: tileChar,
		TileType: tileType,
		Outcome:  string(outcome),
		Success:  true,
		Question: outcome == engine.MoveQuestion,
		Victory:  outcome == engine.MoveWon,
	}
}

// rejectionMessage explains why a move left the state unchanged
func rejectionMessage(config *engine.GameConfig, prev *engine.GameState, outcome engine.MoveOutcome) string {
	switch outcome {
	case engine.MoveInvalid:
		return "Unknown direction. Use up, down, left or right"
	case engine.MoveRejected:
		if prev.Status.IsTerminal() {
			return "The game is over. Reset to play again"
		}
		if prev.ActiveQuestion != nil {
			return "Answer the question before moving"
		}
		return "Move not allowed"
	default:
		if config == nil {
			return engine.DefaultMessages().Blocked
		}
		return config.Messages.WithDefaults().Blocked
	}
}

func stopCode(start *engine.GameState, outcome engine.MoveOutcome) string {
	switch outcome {
	case engine.MoveBlocked:
		return "blocked_rock"
	case engine.MoveOutOfBounds:
		return "blocked_boundary"
	case engine.MoveInvalid:
		return "invalid_direction"
	default:
		if start.ActiveQuestion != nil {
			return "question_pending"
		}
		return "game_over"
	}
}

// attemptInfo describes the cell a move from state's bear position would enter
func attemptInfo(state *engine.GameState, direction string) *AttemptInfo {
	dir := engine.Direction(direction)
	if _, _, ok := dir.Delta(); !ok {
		return nil
	}
	target := state.BearPos.Add(dir)
	if !target.InBounds() {
		return &AttemptInfo{Row: target.Row, Col: target.Col, TileChar: "R", TileType: "boundary"}
	}
	kind := state.Board.At(target)
	return &AttemptInfo{
		Row:      target.Row,
		Col:      target.Col,
		TileChar: engine.KindChar(kind),
		TileType: string(kind),
		Passable: kind != engine.Rock,
	}
}

// stepTile names the kind of cell an accepted move was aimed at
func stepTile(outcome engine.MoveOutcome) (string, string) {
	switch outcome {
	case engine.MoveQuestion:
		return "?", string(engine.Question)
	case engine.MoveWon:
		return "P", string(engine.Pot)
	default:
		return "E", string(engine.Empty)
	}
}

// enrich adds decision aids to a snapshot
func enrich(state *engine.GameState) *engine.GameState {
	if state == nil {
		return nil
	}
	state.LocalView3x3 = buildLocal3x3(state)
	return state
}

// buildLocal3x3 renders the 3x3 neighbourhood around the bear; off-board reads as rock
func buildLocal3x3(state *engine.GameState) []string {
	if state == nil {
		return nil
	}
	lines := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		var row strings.Builder
		for dc := -1; dc <= 1; dc++ {
			p := engine.Position{Row: state.BearPos.Row + dr, Col: state.BearPos.Col + dc}
			if dr == 0 && dc == 0 {
				row.WriteString("B")
				continue
			}
			if !p.InBounds() {
				row.WriteString("R")
				continue
			}
			row.WriteString(engine.KindChar(state.Board.At(p)))
		}
		lines = append(lines, row.String())
	}
	return lines
}
