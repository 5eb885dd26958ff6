package engine

import "errors"

// Illegal actions. Apply wraps these with detail; match with errors.Is.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInsufficientMana   = errors.New("insufficient mana")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrFieldFull          = errors.New("field is full")
	ErrCardNotOnField     = errors.New("card not on field")
	ErrCannotAttack       = errors.New("card cannot attack")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrAbilityUnavailable = errors.New("ability unavailable")
	ErrAbilityOnCooldown  = errors.New("ability on cooldown")
	ErrTargetRequired     = errors.New("target required")
	ErrGameOver           = errors.New("game is over")
	ErrUnknownAction      = errors.New("unknown action")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrStaleAction        = errors.New("action is for another turn")
	ErrInvalidSetup       = errors.New("invalid game setup")
)
