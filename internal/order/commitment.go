package order

import "slices"

// Status is the lifecycle state of a Commitment.
type Status string

const (
	// StatusNone means no commitment exists.
	StatusNone Status = "None"
	// StatusPending means the token is valid and a stock-out timer is armed.
	StatusPending Status = "Pending"
	// StatusInvalidated means the token is void until the next commit.
	StatusInvalidated Status = "Invalidated"
)

func (s Status) String() string {
	return string(s)
}

// Cause records why a commitment was invalidated.
type Cause string

const (
	CauseNone             Cause = "None"
	CauseCartChanged      Cause = "CartChanged"
	CauseItemsUnavailable Cause = "ItemsUnavailable"
)

func (c Cause) String() string {
	return string(c)
}

// Commitment is the record produced by Commit.
//
// Snapshot is captured at commit time and never changes afterwards. Items
// later withdrawn by a stock-out are listed in Withdrawn; Remaining gives the
// snapshot without them for display.
type Commitment struct {
	Token     string
	Snapshot  Cart
	Status    Status
	Cause     Cause
	Withdrawn []string
}

// Valid reports whether the token may still be redeemed.
func (c Commitment) Valid() bool {
	return c.Status == StatusPending
}

// Remaining returns the snapshot minus withdrawn lines.
func (c Commitment) Remaining() Cart {
	out := c.Snapshot.Clone()
	out.removeAll(c.Withdrawn)
	return out
}

func (c Commitment) clone() Commitment {
	c.Snapshot = c.Snapshot.Clone()
	c.Withdrawn = slices.Clone(c.Withdrawn)
	return c
}
