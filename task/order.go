package task

import "sort"

// SortByPosition orders tasks by their manual position. The sort is stable,
// so position collisions break ties by arrival order.
func SortByPosition(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})
}

// CompactPositions rewrites positions as a dense 1..N sequence following the
// current slice order. Run after every save-shaped mutation so the persisted
// manual order is always contiguous.
func CompactPositions(tasks []Task) {
	for i := range tasks {
		tasks[i].Position = i + 1
	}
}

// NextPosition returns the position for a task appended to the end of the
// manual order.
func NextPosition(tasks []Task) int {
	max := 0
	for _, t := range tasks {
		if t.Position > max {
			max = t.Position
		}
	}
	return max + 1
}

// Reorder rearranges tasks to match an explicit identity sequence. Tasks not
// mentioned in the sequence are appended at the end in their prior relative
// order; duplicate and unknown identities are ignored. Positions are
// recompacted to match the new order.
func Reorder(tasks []Task, order []string) []Task {
	if len(order) == 0 {
		return tasks
	}

	byID := make(map[string]int, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = i
	}

	seen := make(map[string]bool, len(order))
	reordered := make([]Task, 0, len(tasks))
	for _, id := range order {
		if seen[id] {
			continue
		}
		if i, ok := byID[id]; ok {
			reordered = append(reordered, tasks[i])
			seen[id] = true
		}
	}
	for _, t := range tasks {
		if !seen[t.ID] {
			reordered = append(reordered, t)
		}
	}

	CompactPositions(reordered)
	return reordered
}
