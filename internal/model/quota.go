package model

// Capability is one of the two independent quota-gated draw actions.
type Capability string

const (
	CapabilityCard Capability = "card"
	CapabilityDice Capability = "dice"
)
