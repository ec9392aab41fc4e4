// Package engine provides the core game logic for the Honey Bear grammar game.
//
// The engine package implements the game mechanics including:
//   - 6x6 grid movement with rock and boundary blocking
//   - Question cells that pause movement until a multiple-choice answer is given
//   - Scoring, the honey pot win condition and the countdown timeout
//   - Configuration parsing and validation
//
// Core Types:
//
// GameState is the explicit state object. Its transition methods ApplyMove,
// ApplyAnswer and Tick mutate it in place and report an outcome; invalid input
// leaves it untouched. GameEngine owns one GameState behind a mutex, records
// history, runs the Countdown and hands out deep-copied snapshots.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.StartClock(ctx, time.Second, func(s *engine.GameState) {
//		fmt.Println(s.Remaining)
//	})
//	defer gameEngine.StopClock()
//
//	gameEngine.Move("right")
//	if q := gameEngine.GetActiveQuestion(); q != nil {
//		gameEngine.Answer(q.Options[0])
//	}
//
// Game Rules:
//
// The bear starts on its board cell and moves one step at a time. Rocks and
// the board edge block it. Stepping toward a question cell shows a question;
// any listed answer moves the bear onto that cell, and a correct one scores a
// point. Reaching the pot wins. When the timer reaches zero the game is over.
package engine
