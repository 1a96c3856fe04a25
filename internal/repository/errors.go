package repository

import "errors"

// ErrChannelBound is returned when a ticket's channel binding already
// exists; the binding is write-once.
var ErrChannelBound = errors.New("ticket channel already bound")

// ErrDuplicateOpenTicket is returned when an insert loses the race against
// another open ticket for the same (requester, counterparty, tier) key.
// The unique partial index is the authoritative guard; the pre-insert
// existence check is only a fast path.
var ErrDuplicateOpenTicket = errors.New("open ticket already exists for this request key")
