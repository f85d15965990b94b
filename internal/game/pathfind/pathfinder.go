// Package pathfind answers path and reachability queries over a GridMap.
package pathfind

import (
	"container/heap"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// PathFinder runs 8-directional A* and breadth-first reachability.
// It only reads the grid, so one finder can serve a whole match.
type PathFinder struct {
	grid *core.GridMap
}

func New(grid *core.GridMap) *PathFinder {
	return &PathFinder{grid: grid}
}

// FindPath returns the tiles from start to goal inclusive, or an empty
// slice when goal cannot be reached. Every step costs 1 including
// diagonals, and the heuristic is Manhattan distance. That heuristic
// overestimates on diagonal-heavy routes, so the result is not always the
// shortest path; callers rely on the route it produces, not on optimality.
// Nodes with equal priority are expanded in the order they were queued.
func (pf *PathFinder) FindPath(start, goal core.Position) []core.Position {
	if start == goal {
		return []core.Position{start}
	}

	frontier := &priorityQueue{}
	heap.Init(frontier)
	seq := 0
	heap.Push(frontier, &node{pos: start, priority: 0, seq: seq})

	cameFrom := map[core.Position]core.Position{}
	costSoFar := map[core.Position]int{start: 0}

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*node)
		if current.pos == goal {
			break
		}

		for _, d := range core.Directions {
			next := current.pos.Add(d)
			if !pf.grid.IsWalkablePos(next) {
				continue
			}
			newCost := costSoFar[current.pos] + 1
			if old, seen := costSoFar[next]; seen && newCost >= old {
				continue
			}
			costSoFar[next] = newCost
			cameFrom[next] = current.pos
			seq++
			heap.Push(frontier, &node{
				pos:      next,
				priority: newCost + next.ManhattanTo(goal),
				seq:      seq,
			})
		}
	}

	if _, ok := cameFrom[goal]; !ok {
		return []core.Position{}
	}
	return reconstructPath(cameFrom, start, goal)
}

// ReachableSet returns every walkable tile whose BFS hop count from origin
// is at most maxDistance, origin included.
func (pf *PathFinder) ReachableSet(origin core.Position, maxDistance int) map[core.Position]struct{} {
	out := map[core.Position]struct{}{origin: {}}
	if maxDistance <= 0 {
		return out
	}

	dist := map[core.Position]int{origin: 0}
	queue := []core.Position{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if dist[current] >= maxDistance {
			continue
		}
		for _, d := range core.Directions {
			next := current.Add(d)
			if _, seen := dist[next]; seen || !pf.grid.IsWalkablePos(next) {
				continue
			}
			dist[next] = dist[current] + 1
			out[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return out
}

func reconstructPath(cameFrom map[core.Position]core.Position, start, goal core.Position) []core.Position {
	path := []core.Position{goal}
	for current := goal; current != start; {
		current = cameFrom[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type node struct {
	pos      core.Position
	priority int
	seq      int
}

type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*node))
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
