// Package lattice holds the recombining binomial tree of underlying prices.
// It carries no pricing logic: the pricer reads node prices and writes option values.
package lattice

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

// Node single point of the tree.
type Node struct {
	underlyingPrice float64
	// OptionValue is NaN until the pricer fills it.
	OptionValue float64
}

// UnderlyingPrice returns the asset price at the node. It is fixed at build time.
func (n *Node) UnderlyingPrice() float64 {
	return n.underlyingPrice
}

// Level nodes of one time step, ordered by the number of up-moves.
type Level struct {
	nodes []Node
}

// Len returns the number of nodes in the level.
func (l *Level) Len() int {
	return len(l.nodes)
}

// Node returns the j-th node of the level for reading and writing its option value.
func (l *Level) Node(j int) *Node {
	return &l.nodes[j]
}

// Lattice triangular tree where level i has i+1 nodes.
type Lattice struct {
	levels []Level
}

// Build allocates timeSteps+1 levels and sets every node price to
// spot * up^j * down^(i-j). A zero timeSteps yields a single node at spot.
func Build(spotPrice, upFactor, downFactor float64, timeSteps int) *Lattice {
	levels := make([]Level, timeSteps+1)
	for i := range levels {
		nodes := make([]Node, i+1)
		for j := range nodes {
			nodes[j] = Node{
				underlyingPrice: spotPrice * math.Pow(upFactor, float64(j)) * math.Pow(downFactor, float64(i-j)),
				OptionValue:     math.NaN(),
			}
		}
		levels[i] = Level{nodes: nodes}
	}

	return &Lattice{levels: levels}
}

// LevelCount returns the number of levels, time steps plus one.
func (l *Lattice) LevelCount() int {
	return len(l.levels)
}

// Level returns the i-th level, 0 being today.
func (l *Lattice) Level(i int) *Level {
	return &l.levels[i]
}

// Root returns the single node of level 0.
func (l *Lattice) Root() *Node {
	return l.levels[0].Node(0)
}

// Render yields one line per level listing (underlying price, option value) for each node.
// Lines are formatted on demand from the current state.
func (l *Lattice) Render() iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		for i := range l.levels {
			b.Reset()
			fmt.Fprintf(&b, "step %d:", i)
			for _, n := range l.levels[i].nodes {
				fmt.Fprintf(&b, " (%.6f, %.6f)", n.underlyingPrice, n.OptionValue)
			}
			if !yield(b.String()) {
				return
			}
		}
	}
}
