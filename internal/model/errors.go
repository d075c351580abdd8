package model

import "errors"

// Common errors used across the application
var (
	// Session errors, reported to the requesting client only
	ErrGameAlreadyStarted   = errors.New("game has already started")
	ErrJoinAfterStart       = errors.New("cannot join a game in progress")
	ErrNotHost              = errors.New("player is not the host")
	ErrGameNotStarted       = errors.New("game has not started")
	ErrAlreadyJoined        = errors.New("player has already joined")
	ErrParagraphUnavailable = errors.New("paragraph unavailable")

	// Registry errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")

	// Paragraph errors
	ErrCorpusEmpty = errors.New("paragraph corpus is empty")
	ErrPoolEmpty   = errors.New("paragraph pool is empty")
)

var clientMessages = map[error]string{
	ErrGameAlreadyStarted:   "The game has already started",
	ErrJoinAfterStart:       "You cannot join the already started game",
	ErrNotHost:              "You are not the host of the game",
	ErrGameNotStarted:       "The game has not started yet",
	ErrAlreadyJoined:        "You have already joined this game",
	ErrParagraphUnavailable: "Could not generate a paragraph, please try again",
	ErrSessionNotFound:      "Session not found",
	ErrSessionClosed:        "Session has closed",
}

// ClientMessage returns the message shown to a player for err
func ClientMessage(err error) string {
	for target, msg := range clientMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return "Something went wrong"
}
