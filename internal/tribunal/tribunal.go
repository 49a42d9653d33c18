// Package tribunal simulates a panel of trading agents that votes on
// a buy/sell/hold decision by simple majority.
package tribunal

import (
	"fmt"
	"math/rand"
	"sync"
)

// Decision is one agent's (or the panel's) verdict.
type Decision string

// Possible decisions. Ties fall back to hold.
const (
	DecisionBuy  Decision = "buy"
	DecisionSell Decision = "sell"
	DecisionHold Decision = "hold"
)

// Opinion is a single agent's vote with its stated reason.
type Opinion struct {
	AgentID       int      `json:"agentId"`
	Decision      Decision `json:"decision"`
	Justification string   `json:"justification"`
}

// Result is the outcome of one tribunal round.
type Result struct {
	FinalDecision Decision         `json:"finalDecision"`
	DecisionCount map[Decision]int `json:"decisionCount"`
	Opinions      []Opinion        `json:"opinions"`
}

// DefaultAgents is the panel size.
const DefaultAgents = 7

// Tribunal runs voting rounds. Agents are simulated with randomized
// opinions until a real model replaces them.
type Tribunal struct {
	agents int

	mu  sync.Mutex
	rng *rand.Rand
}

// Options contains configuration for creating a Tribunal.
type Options struct {
	// Agents defaults to DefaultAgents.
	Agents int

	// Seed makes voting reproducible; 0 seeds from a fixed value.
	Seed int64
}

// New creates a tribunal.
func New(opts Options) *Tribunal {
	t := &Tribunal{
		agents: opts.Agents,
		rng:    rand.New(rand.NewSource(opts.Seed)),
	}
	if t.agents <= 0 {
		t.agents = DefaultAgents
	}
	return t
}

// Decide runs one voting round and tallies the majority.
func (t *Tribunal) Decide() *Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	opinions := make([]Opinion, 0, t.agents)
	count := map[Decision]int{DecisionBuy: 0, DecisionSell: 0, DecisionHold: 0}

	for id := 1; id <= t.agents; id++ {
		op := t.agentOpinion(id)
		opinions = append(opinions, op)
		count[op.Decision]++
	}

	final := DecisionHold
	switch {
	case count[DecisionBuy] > count[DecisionSell] && count[DecisionBuy] > count[DecisionHold]:
		final = DecisionBuy
	case count[DecisionSell] > count[DecisionBuy] && count[DecisionSell] > count[DecisionHold]:
		final = DecisionSell
	}

	return &Result{
		FinalDecision: final,
		DecisionCount: count,
		Opinions:      opinions,
	}
}

// agentOpinion simulates one agent's vote. Caller holds t.mu.
func (t *Tribunal) agentOpinion(id int) Opinion {
	decisions := []Decision{DecisionBuy, DecisionSell, DecisionHold}
	decision := decisions[t.rng.Intn(len(decisions))]

	var justification string
	switch decision {
	case DecisionBuy:
		justification = fmt.Sprintf("Agent %d: Market indicators look bullish. Recommending a buy.", id)
	case DecisionSell:
		justification = fmt.Sprintf("Agent %d: Market is showing bearish signs. Recommending a sell.", id)
	case DecisionHold:
		justification = fmt.Sprintf("Agent %d: Market is uncertain. Recommending to hold.", id)
	}

	return Opinion{AgentID: id, Decision: decision, Justification: justification}
}
