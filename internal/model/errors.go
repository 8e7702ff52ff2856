package model

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of these,
// so callers can match either the precise failure or its category.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvariant    = errors.New("invariant violation")
)

var (
	// Lookup errors
	ErrPlayerNotFound     = fmt.Errorf("%w: player", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)

	// Tournament lifecycle errors
	ErrTournamentNotScheduled = fmt.Errorf("%w: tournament is not scheduled", ErrInvalidState)
	ErrTournamentNotOngoing   = fmt.Errorf("%w: tournament is not ongoing", ErrInvalidState)
	ErrTournamentNotCompleted = fmt.Errorf("%w: tournament has not completed", ErrInvalidState)
	ErrConcurrentModification = fmt.Errorf("%w: tournament was modified concurrently", ErrInvalidState)

	// Match lifecycle errors
	ErrMatchNotPlayed       = fmt.Errorf("%w: match has not been played yet", ErrInvalidState)
	ErrMatchAlreadyRecorded = fmt.Errorf("%w: match result already recorded", ErrInvalidState)
	ErrMatchNotPlayable     = fmt.Errorf("%w: match cannot be played", ErrInvalidState)

	// Structural validation errors
	ErrNoPlayers             = fmt.Errorf("%w: at least one player is required", ErrInvalidInput)
	ErrNoEligiblePlayers     = fmt.Errorf("%w: no player is inside the rating band", ErrInvalidInput)
	ErrInsufficientPlayers   = fmt.Errorf("%w: tournament needs at least 2 players", ErrInvalidInput)
	ErrOddPlayerCount        = fmt.Errorf("%w: tournament needs an even number of players", ErrInvalidInput)
	ErrNotPowerOfTwo         = fmt.Errorf("%w: player count must be a power of two", ErrInvalidInput)
	ErrHybridTooSmall        = fmt.Errorf("%w: hybrid tournament needs at least 4 players", ErrInvalidInput)
	ErrNegativeScore         = fmt.Errorf("%w: match score cannot be negative", ErrInvalidInput)
	ErrZeroScore             = fmt.Errorf("%w: total match score must be more than 0", ErrInvalidInput)
	ErrDrawNotAllowed        = fmt.Errorf("%w: draws are not allowed", ErrInvalidInput)
	ErrUnsupportedFormat     = fmt.Errorf("%w: unsupported tournament format", ErrInvalidInput)
	ErrInvalidRatingBand     = fmt.Errorf("%w: minimum rating must not exceed maximum rating", ErrInvalidInput)
	ErrTournamentNameMissing = fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	ErrPlayerNameMissing     = fmt.Errorf("%w: player name is required", ErrInvalidInput)
	ErrInvalidRating         = fmt.Errorf("%w: rating must be positive", ErrInvalidInput)

	// Engine bugs. These should never reach a correct caller.
	ErrNoWinner           = fmt.Errorf("%w: no winner found", ErrInvariant)
	ErrBracketStalled     = fmt.Errorf("%w: bracket produced no further matches", ErrInvariant)
	ErrUnexpectedBracket  = fmt.Errorf("%w: match bracket does not belong to this format", ErrInvariant)
	ErrUnknownParticipant = fmt.Errorf("%w: match participant is not on the roster", ErrInvariant)
)
