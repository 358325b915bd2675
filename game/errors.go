package game

import "errors"

var (
	ErrConstruction  = errors.New("invalid game state")
	ErrIllegalAction = errors.New("illegal action")
	ErrNoLegalAction = errors.New("no legal action")
)
