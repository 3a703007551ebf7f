package service

import "errors"

var (
	// ErrUnknownOperationKind marks a queued operation whose kind no drain
	// path understands. The failure is terminal.
	ErrUnknownOperationKind = errors.New("unknown operation kind")

	// ErrBadPayload marks a queued operation whose payload cannot be
	// decoded. Retrying cannot fix stored bytes, so the failure is
	// terminal.
	ErrBadPayload = errors.New("malformed operation payload")

	// ErrUnknownImageSlot rejects a blob upload naming a slot other than
	// t1 or t2 before it reaches the queue.
	ErrUnknownImageSlot = errors.New("unknown image slot")
)
