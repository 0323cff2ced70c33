package swap

import (
	"time"

	"skillswap/internal/domain/user"
)

type Requested struct {
	SwapID    ID        `json:"swap_id"`
	Requester user.ID   `json:"requester"`
	Recipient user.ID   `json:"recipient"`
	At        time.Time `json:"at"`
}

func (e Requested) EventName() string     { return "swap.requested" }
func (e Requested) AggregateID() string   { return string(e.SwapID) }
func (e Requested) OccurredAt() time.Time { return e.At }

// Accepted is the trigger for opening the swap's chat.
type Accepted struct {
	SwapID    ID        `json:"swap_id"`
	Requester user.ID   `json:"requester"`
	Recipient user.ID   `json:"recipient"`
	At        time.Time `json:"at"`
}

func (e Accepted) EventName() string     { return EventAccepted }
func (e Accepted) AggregateID() string   { return string(e.SwapID) }
func (e Accepted) OccurredAt() time.Time { return e.At }

const EventAccepted = "swap.accepted"

type Rejected struct {
	SwapID ID        `json:"swap_id"`
	At     time.Time `json:"at"`
}

func (e Rejected) EventName() string     { return "swap.rejected" }
func (e Rejected) AggregateID() string   { return string(e.SwapID) }
func (e Rejected) OccurredAt() time.Time { return e.At }

type Completed struct {
	SwapID ID        `json:"swap_id"`
	At     time.Time `json:"at"`
}

func (e Completed) EventName() string     { return "swap.completed" }
func (e Completed) AggregateID() string   { return string(e.SwapID) }
func (e Completed) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	SwapID      ID        `json:"swap_id"`
	CancelledBy user.ID   `json:"cancelled_by"`
	At          time.Time `json:"at"`
}

func (e Cancelled) EventName() string     { return "swap.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.SwapID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }
