package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
	"github.com/wricardo/mcp-training/honeybear/game/service"
)

const instructions = `Honey Bear is a 6x6 grid game. Guide the bear (B) to the honey pot (P)
before the clock runs out. Stepping onto a question cell (?) asks a grammar
question; answer it with the answer tool before moving again. Correct answers
score a point. Rocks (R) and the board edge block movement.

Start with create_session, keep the returned session_id and pass it to every
other tool. Call game_instructions for the full rules.`

// Client is an MCP tool server that plays the game through the HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP server backed by the API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server for stdio or HTTP serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"honey-bear-game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by create_session",
	}
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Start a new game session. Returns the session ID to use with every other tool.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Board configuration ID from list_configs (default: classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List active game sessions, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Show a session's details and current board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, score, clock and any pending question",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the bear one cell up, down, left or right",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the game before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name: "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in order. Stops at the first question, "+
			"blocked move or the pot.", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Directions to execute in order",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the game before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "answer",
		Description: "Answer the pending grammar question with one of its options",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"option": map[string]interface{}{
					"type":        "string",
					"description": "The chosen option, exactly as listed",
				},
			},
			Required: []string{"session_id", "option"},
		},
	}, c.handleAnswer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restart the session from its initial board with a fresh clock",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Show the accepted moves and answers of a session, paginated",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Entries per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "asc for oldest first, desc for newest first (default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List the available boards",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Explain the rules, the board legend and scoring",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe a single board cell by row and column (0-5)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "number",
					"description": "Row index, 0 is the top row",
				},
				"col": map[string]interface{}{
					"type":        "number",
					"description": "Column index, 0 is the left column",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// apiCall sends a JSON request to the game API and decodes the response into result
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func sessionPath(sessionID string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// intArg accepts JSON numbers and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required. Call create_session first.")
	}
	return id, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{}
	if id := stringArg(args, "config_id"); id != "" {
		body["config_id"] = id
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create session: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session created: %s\n", info.ID)
	fmt.Fprintf(&sb, "Board: %s\n", info.ConfigName)
	sb.WriteString("Pass this session_id to every other tool.\n\n")
	sb.WriteString(formatGameState(info.GameState))
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Sessions []*service.SessionInfo `json:"sessions"`
		Total    int                    `json:"total"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sessions: %v", err)), nil
	}

	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions. Use create_session to start one."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active sessions (%d):\n", resp.Total)
	for _, s := range resp.Sessions {
		status, score := "unknown", 0
		if s.GameState != nil {
			status, score = string(s.GameState.Status), s.GameState.Score
		}
		fmt.Fprintf(&sb, "- %s  board=%s  status=%s  score=%d  last used %s\n",
			s.ID, s.ConfigName, status, score, s.LastAccessedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get session: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session %s\n", info.ID)
	fmt.Fprintf(&sb, "Board: %s\n", info.ConfigName)
	fmt.Fprintf(&sb, "Created: %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Last used: %s\n\n", info.LastAccessedAt.Format(time.RFC3339))
	sb.WriteString(formatGameState(info.GameState))
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get game state: %v", err)), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	direction := stringArg(args, "direction")
	if direction == "" {
		return mcp.NewToolResultError("direction is required (up, down, left or right)"), nil
	}

	body := map[string]interface{}{
		"direction": direction,
		"reset":     boolArg(args, "reset"),
	}
	var result service.MoveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Move failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	raw, _ := args["moves"].([]interface{})
	moves := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			moves = append(moves, s)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must be a non-empty list of directions"), nil
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": boolArg(args, "reset"),
	}
	var result service.BulkMoveResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Bulk move failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(&result)), nil
}

func (c *Client) handleAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	option := stringArg(args, "option")
	if option == "" {
		return mcp.NewToolResultError("option is required"), nil
	}

	var result service.AnswerResult
	body := map[string]string{"option": option}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/answer"), body, &result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Answer failed: %v", err)), nil
	}
	return mcp.NewToolResultText(formatAnswerResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Game reset.\n\n" + formatGameState(resp.State)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		query.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get move history: %v", err)), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list configs: %v", err)), nil
	}

	if len(configs) == 0 {
		return mcp.NewToolResultText("No boards available."), nil
	}

	var sb strings.Builder
	sb.WriteString("Available boards:\n")
	for _, cfg := range configs {
		reach := "pot reachable"
		if !cfg.PotReachable {
			reach = "pot NOT reachable"
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", cfg.ConfigID, cfg.Name, cfg.Description)
		fmt.Fprintf(&sb, "    time limit %s, %d questions, %s\n",
			engine.FormatClock(cfg.TimeLimit), cfg.QuestionCount, reach)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

const rulesText = `HONEY BEAR RULES

Goal: move the bear to the honey pot before the timer reaches 00:00.

Board legend (row 0 is the top, column 0 is the left):
  B  the bear
  E  empty cell
  ?  question cell
  R  rock, cannot be entered
  P  honey pot

Moving:
  - One cell per move: up, down, left or right.
  - Rocks and the board edge block the move. A blocked move changes nothing.
  - Stepping onto a ? does not move the bear yet. A grammar question is asked instead.

Questions:
  - While a question is pending every move is refused. Use the answer tool.
  - Answer with one of the listed options, spelled exactly.
  - Either way the bear then steps onto the question cell and the cell is cleared.
  - A correct answer scores 1 point. A wrong answer scores nothing.

End of game:
  - Reaching P wins and stops the clock.
  - When the clock runs out the game is over. Use reset_game to play again.

Tips:
  - bulk_move runs a list of moves and stops at the first question or blocked move.
  - local_view shows the 3x3 cells around the bear. Off-board cells show as R.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rulesText), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}
	pos := engine.Position{Row: row, Col: col}
	if !pos.InBounds() {
		return mcp.NewToolResultError(fmt.Sprintf("%s is outside the %dx%d board", pos, engine.BoardSize, engine.BoardSize)), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get game state: %v", err)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, pos)), nil
}

func describeCell(state *engine.GameState, pos engine.Position) string {
	kind := state.Board.At(pos)
	var detail string
	switch kind {
	case engine.Bear:
		detail = "the bear is here"
	case engine.Rock:
		detail = "a rock, the bear cannot enter it"
	case engine.Question:
		detail = "a question cell, entering it asks a grammar question"
		if q := state.ActiveQuestion; q != nil && q.Target == pos {
			detail += " (pending now)"
		}
	case engine.Pot:
		detail = "the honey pot, reach it to win"
	default:
		detail = "empty"
	}

	dist := abs(pos.Row-state.BearPos.Row) + abs(pos.Col-state.BearPos.Col)
	return fmt.Sprintf("Cell %s [%s]: %s. Bear at %s, %d steps away ignoring obstacles.",
		pos, engine.KindChar(kind), detail, state.BearPos, dist)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Formatting helpers

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available."
	}

	remaining := state.Remaining
	if remaining == "" {
		remaining = engine.FormatClock(state.SecsLeft)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Position: %s | Score: %d | Time left: %s | Status: %s\n",
		state.BearPos, state.Score, remaining, state.Status)
	if state.Message != "" {
		fmt.Fprintf(&sb, "Message: %s\n", state.Message)
	}

	sb.WriteString("\nBoard:\n   012345\n")
	for i, row := range engine.RenderBoard(state.Board) {
		fmt.Fprintf(&sb, "%d  %s\n", i, row)
	}

	if len(state.LocalView3x3) > 0 {
		sb.WriteString("\nLocal view:\n")
		for _, row := range state.LocalView3x3 {
			fmt.Fprintf(&sb, "   %s\n", row)
		}
	}

	if q := state.ActiveQuestion; q != nil {
		sb.WriteString("\n")
		sb.WriteString(formatQuestion(q))
	}
	return sb.String()
}

func formatQuestion(q *engine.ActiveQuestion) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "QUESTION at %s: %s\n", q.Target, q.Prompt)
	fmt.Fprintf(&sb, "Options: %s\n", strings.Join(q.Options, " | "))
	sb.WriteString("Use the answer tool with one of the options.\n")
	return sb.String()
}

func formatMoves(moves []string) string {
	if len(moves) == 0 {
		return "none"
	}
	return strings.Join(moves, ", ")
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	if result.Success {
		fmt.Fprintf(&sb, "Move %s: %s\n", result.Outcome, result.Message)
	} else {
		fmt.Fprintf(&sb, "Move refused (%s): %s\n", result.Outcome, result.Message)
		if a := result.AttemptedTo; a != nil {
			fmt.Fprintf(&sb, "Target (%d,%d) is [%s] %s\n", a.Row, a.Col, a.TileChar, a.TileType)
		}
	}
	fmt.Fprintf(&sb, "Possible moves: %s\n\n", formatMoves(result.PossibleMoves))
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatAnswerResult(result *service.AnswerResult) string {
	var sb strings.Builder
	switch {
	case !result.Success:
		fmt.Fprintf(&sb, "Answer refused (%s): %s\n", result.Outcome, result.Message)
	case result.Correct:
		fmt.Fprintf(&sb, "Correct! %s\n", result.Message)
	default:
		fmt.Fprintf(&sb, "Incorrect. %s\n", result.Message)
	}
	fmt.Fprintf(&sb, "Possible moves: %s\n\n", formatMoves(result.PossibleMoves))
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatBulkMoveResult(result *service.BulkMoveResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Executed %d of %d moves", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&sb, " (list truncated to %d)", result.Limit)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "From %s to %s, score %+d\n", result.StartPos, result.EndPos, result.ScoreDelta)

	for _, step := range result.Steps {
		fmt.Fprintf(&sb, "  %d. %s %s -> %s [%s] %s\n",
			step.Idx, step.Dir, step.From, step.To, step.TileChar, step.Outcome)
	}

	if result.StopReasonCode != "" {
		fmt.Fprintf(&sb, "Stopped on move %d (%s): %s\n",
			result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&sb, "Target (%d,%d) is [%s] %s\n", a.Row, a.Col, a.TileChar, a.TileType)
	}
	if result.GameOver {
		fmt.Fprintf(&sb, "Game over: %s\n", result.GameOverCode)
	}
	if q := result.ActiveQuestion; q != nil {
		sb.WriteString(formatQuestion(q))
	}
	fmt.Fprintf(&sb, "Possible moves: %s\n\n", formatMoves(result.PossibleMoves))
	sb.WriteString(formatGameState(result.GameState))
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	if history.TotalMoves == 0 {
		return "No moves yet."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "History page %d of %d (%d actions total)\n",
		history.Page, history.TotalPages, history.TotalMoves)
	for _, m := range history.Moves {
		fmt.Fprintf(&sb, "#%d %s %s: %s -> %s, %s, score %d, %s left\n",
			m.MoveNumber, m.Action, m.Input, m.FromPosition, m.ToPosition,
			m.Outcome, m.Score, engine.FormatClock(m.SecsLeft))
	}
	if history.HasNext {
		fmt.Fprintf(&sb, "More on page %d.\n", history.Page+1)
	}
	return sb.String()
}
