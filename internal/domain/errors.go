package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Input errors
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrInvalidTransport = errors.New("unknown transport mode")
	ErrInvalidDecision  = errors.New("unknown streak decision")

	// Economy errors
	ErrInsufficientFunds = errors.New("insufficient XP")
	ErrAlreadyOwned      = errors.New("item already owned")
	ErrUnknownItem       = errors.New("unknown item")
	ErrNotForSale        = errors.New("item is not for sale")
	ErrNotOwned          = errors.New("item not owned")
	ErrNotEquippable     = errors.New("item cannot be equipped")
	ErrUnknownSlot       = errors.New("unknown item slot")

	// Settlement errors
	ErrNoPendingDecision = errors.New("no trip is awaiting a streak decision")
	ErrDecisionPending   = errors.New("a trip is already awaiting a streak decision")

	// Store errors
	ErrHistoryNotFound   = errors.New("history entry not found")
	ErrSavedListNotFound = errors.New("saved list not found")
	ErrSnapshotMalformed = errors.New("snapshot is malformed")
)
