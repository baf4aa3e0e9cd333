package domain

import "time"

// NodeSnapshot is a read-only view of one audio backend node.
type NodeSnapshot struct {
	Name                  string
	Connected             bool
	Players               int
	PlayingPlayers        int
	UptimeMs              int64
	MemoryUsedBytes       uint64
	MemoryReservableBytes uint64
	SystemLoad            float64
	BackendLoad           float64
}

type Health int

const (
	HealthOperational Health = iota
	HealthPartial
)

func (h Health) String() string {
	if h == HealthPartial {
		return "partially operational"
	}
	return "fully operational"
}

// Classify is Partial iff at least one node is not connected.
func Classify(nodes []NodeSnapshot) Health {
	for _, n := range nodes {
		if !n.Connected {
			return HealthPartial
		}
	}
	return HealthOperational
}

type StatusReport struct {
	Nodes       []NodeSnapshot
	Health      Health
	GeneratedAt time.Time
}

func NewStatusReport(nodes []NodeSnapshot, now time.Time) StatusReport {
	return StatusReport{Nodes: nodes, Health: Classify(nodes), GeneratedAt: now}
}
