package engine

import "sort"

// NextQuestionIndex scans the pool in order and returns the first index not in used.
// When every index has been used it falls back to 0 without marking it again, so an
// exhausted pool keeps serving its first question.
func NextQuestionIndex(poolSize int, used []int) int {
	for i := 0; i < poolSize; i++ {
		if !containsIndex(used, i) {
			return i
		}
	}
	return 0
}

func containsIndex(used []int, idx int) bool {
	for _, u := range used {
		if u == idx {
			return true
		}
	}
	return false
}

// markUsed adds idx to the used set, keeping it sorted and free of duplicates
func markUsed(used []int, idx int) []int {
	if containsIndex(used, idx) {
		return used
	}
	used = append(used, idx)
	sort.Ints(used)
	return used
}

// ask builds the pending question for pool index idx
func ask(pool []QuestionItem, idx int, target Position) *ActiveQuestion {
	q := pool[idx]
	return &ActiveQuestion{
		Target:    target,
		Prompt:    q.Prompt,
		Options:   append([]string{}, q.Options...),
		PoolIndex: idx,
	}
}
