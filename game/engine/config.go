package engine

import (
	"fmt"
	"strings"
)

// Messages holds the feedback lines shown to the player
type Messages struct {
	Welcome   string `json:"welcome" yaml:"welcome"`
	Moved     string `json:"moved" yaml:"moved"`
	Question  string `json:"question" yaml:"question"`
	Correct   string `json:"correct" yaml:"correct"`
	Incorrect string `json:"incorrect" yaml:"incorrect"`
	Victory   string `json:"victory" yaml:"victory"`
	TimeUp    string `json:"time_up" yaml:"time_up"`
	Blocked   string `json:"blocked" yaml:"blocked"`
}

// DefaultMessages returns the stock feedback lines
func DefaultMessages() Messages {
	return Messages{
		Welcome:   "Guide the bear to the honey pot. Answer the grammar questions on the way!",
		Moved:     "Bear moved to (%d,%d)",
		Question:  "Answer the question to continue",
		Correct:   "Correct! Score: %d",
		Incorrect: "Not quite. The answer was '%s'",
		Victory:   "You won! Final score: %d",
		TimeUp:    "Time's up!",
		Blocked:   "Can't move there!",
	}
}

// WithDefaults fills any empty message from DefaultMessages
func (m Messages) WithDefaults() Messages {
	d := DefaultMessages()
	if m.Welcome == "" {
		m.Welcome = d.Welcome
	}
	if m.Moved == "" {
		m.Moved = d.Moved
	}
	if m.Question == "" {
		m.Question = d.Question
	}
	if m.Correct == "" {
		m.Correct = d.Correct
	}
	if m.Incorrect == "" {
		m.Incorrect = d.Incorrect
	}
	if m.Victory == "" {
		m.Victory = d.Victory
	}
	if m.TimeUp == "" {
		m.TimeUp = d.TimeUp
	}
	if m.Blocked == "" {
		m.Blocked = d.Blocked
	}
	return m
}

// GameConfig describes a board, its question pool and timer
type GameConfig struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Layout      []string       `json:"layout" yaml:"layout"`
	TimeLimit   int            `json:"time_limit" yaml:"time_limit"`
	Questions   []QuestionItem `json:"questions" yaml:"questions"`
	Messages    Messages       `json:"messages" yaml:"messages"`
}

// ValidateGameConfig checks a configuration for structural correctness.
// Reachability of the pot is not required; see ShortestPath for that.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.TimeLimit < 1 || config.TimeLimit > MaxTimeLimit {
		return fmt.Errorf("config validation: time_limit must be between 1 and %d, got %d", MaxTimeLimit, config.TimeLimit)
	}

	if len(config.Layout) != BoardSize {
		return fmt.Errorf("config validation: layout must have %d rows, got %d", BoardSize, len(config.Layout))
	}

	bears, pots := 0, 0
	for i, row := range config.Layout {
		if len(row) != BoardSize {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", i+1, BoardSize, len(row))
		}
		for j, char := range row {
			switch char {
			case 'E', 'R', '?':
			case 'B':
				bears++
			case 'P':
				pots++
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}
	if bears != 1 {
		return fmt.Errorf("config validation: layout must contain exactly one bear (B), got %d", bears)
	}
	if pots != 1 {
		return fmt.Errorf("config validation: layout must contain exactly one pot (P), got %d", pots)
	}

	if len(config.Questions) == 0 {
		return fmt.Errorf("config validation: at least one question is required")
	}
	for i, q := range config.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("config validation: question %d has an empty prompt", i+1)
		}
		if len(q.Options) != OptionsPerQuestion {
			return fmt.Errorf("config validation: question %d must have %d options, got %d", i+1, OptionsPerQuestion, len(q.Options))
		}
		if !q.HasOption(q.Answer) {
			return fmt.Errorf("config validation: question %d answer '%s' is not one of its options", i+1, q.Answer)
		}
	}

	// Format strings, when overridden, must keep their verbs
	if config.Messages.Correct != "" && !strings.Contains(config.Messages.Correct, "%d") {
		return fmt.Errorf("config validation: messages.correct must contain %%d for score")
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for score")
	}
	if config.Messages.Incorrect != "" && !strings.Contains(config.Messages.Incorrect, "%s") {
		return fmt.Errorf("config validation: messages.incorrect must contain %%s for the answer")
	}
	if config.Messages.Moved != "" && strings.Count(config.Messages.Moved, "%d") != 2 {
		return fmt.Errorf("config validation: messages.moved must contain two %%d for row and col")
	}

	return nil
}

// ParseLayout converts layout rows into a board and the bear's starting position
func ParseLayout(layout []string) (Board, Position) {
	var board Board
	var bear Position
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			kind := Empty
			if r < len(layout) && c < len(layout[r]) {
				switch layout[r][c] {
				case 'R':
					kind = Rock
				case '?':
					kind = Question
				case 'P':
					kind = Pot
				case 'B':
					kind = Bear
					bear = Position{Row: r, Col: c}
				}
			}
			board[r][c] = kind
		}
	}
	return board, bear
}

// DefaultConfig returns the classic board with its four relative-pronoun questions
func DefaultConfig() *GameConfig {
	options := []string{"which", "who", "whom", "whose"}
	return &GameConfig{
		Name:        "classic",
		Description: "The classic honey-bear board with relative pronoun questions",
		Layout: []string{
			"BE?RRR",
			"ER?R?E",
			"RRERRE",
			"?E?RE?",
			"ERR?ER",
			"EEERPE",
		},
		TimeLimit: DefaultTimeLimit,
		Questions: []QuestionItem{
			{Prompt: "That's the boy ... parents I met.", Options: options, Answer: "whose"},
			{Prompt: "I have a friend ... can speak six languages.", Options: options, Answer: "who"},
			{Prompt: "The car ... I bought was expensive.", Options: options, Answer: "which"},
			{Prompt: "To ... did you give the book?", Options: options, Answer: "whom"},
		},
		Messages: DefaultMessages(),
	}
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	board, bear := ParseLayout(config.Layout)
	messages := config.Messages.WithDefaults()

	secs := config.TimeLimit
	if secs <= 0 || secs > MaxTimeLimit {
		secs = DefaultTimeLimit
	}

	return &GameState{
		Board:             board,
		BearPos:           bear,
		UsedQuestions:     []int{},
		Score:             0,
		Status:            StatusPlaying,
		SecsLeft:          secs,
		Remaining:         FormatClock(secs),
		Message:           messages.Welcome,
		ConfigName:        config.Name,
		Pool:              config.Questions,
		MoveHistory:       []MoveHistoryEntry{},
		TotalMoves:        0,
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
		messages:          messages,
	}
}
