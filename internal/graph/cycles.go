package graph

import (
	"sort"
)

// Cycle is one strongly connected component with more than one member,
// rendered as a path closed back onto its first node.
type Cycle struct {
	Members []string `json:"members"`
	Path    []string `json:"path"`
}

// Cycles finds all circular dependency groups using Tarjan's strongly
// connected components algorithm. The recursion is unrolled onto an
// explicit stack so deep chains cannot overflow the goroutine stack.
func (g *DependencyGraph) Cycles() []Cycle {
	n := len(g.nodes)
	const unvisited = -1

	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var (
		counter int
		stack   []int
		cycles  []Cycle
	)

	type frame struct {
		node int
		next int
	}

	for root := 0; root < n; root++ {
		if index[root] != unvisited {
			continue
		}

		callStack := []frame{{node: root}}
		index[root] = counter
		lowlink[root] = counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]
			v := top.node

			if top.next < len(g.out[v]) {
				w := g.out[v][top.next]
				top.next++
				if index[w] == unvisited {
					index[w] = counter
					lowlink[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					callStack = append(callStack, frame{node: w})
				} else if onStack[w] && index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
				continue
			}

			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := callStack[len(callStack)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}

			if lowlink[v] != index[v] {
				continue
			}
			var members []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			if len(members) < 2 {
				continue
			}
			cycles = append(cycles, g.renderCycle(members))
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		if len(cycles[i].Members) != len(cycles[j].Members) {
			return len(cycles[i].Members) > len(cycles[j].Members)
		}
		return cycles[i].Members[0] < cycles[j].Members[0]
	})
	return cycles
}

// renderCycle walks edges inside the component from its smallest member
// until the walk returns to the start, producing a readable closed path.
func (g *DependencyGraph) renderCycle(ids []int) Cycle {
	inComponent := make(map[int]bool, len(ids))
	members := make([]string, len(ids))
	for i, id := range ids {
		inComponent[id] = true
		members[i] = g.nodes[id]
	}
	sort.Strings(members)

	start := g.index[members[0]]
	path := []string{members[0]}
	seen := map[int]bool{start: true}
	current := start
	for {
		next := -1
		for _, nb := range g.out[current] {
			if nb == start && len(path) > 1 {
				next = nb
				break
			}
			if inComponent[nb] && !seen[nb] {
				next = nb
				break
			}
		}
		if next == -1 || next == start {
			break
		}
		seen[next] = true
		path = append(path, g.nodes[next])
		current = next
	}
	path = append(path, members[0])
	return Cycle{Members: members, Path: path}
}
