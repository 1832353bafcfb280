// C8: the three document-at-a-time (DAAT) retrieval engines from
// spec.md §4.8, ported line-for-line from
// original_source/search_system/query/query.py's daat_conjunctive,
// daat_disjunctive_maxscore, and daat_disjunctive_blockmax_wand.
package index

import (
	"container/heap"
	"sort"
)

// Result is one ranked hit.
type Result struct {
	DocID uint64
	Score float64
}

// scoredDoc is a (score, docID) pair ordered as a min-heap on score, so
// the root is always the current top-k's weakest member — the same
// role Python's heapq plays in query.py's check_push_topk.
type scoredDoc struct {
	score float64
	docID uint64
}

type topKHeap []scoredDoc

func (h topKHeap) Len() int            { return len(h) }
func (h topKHeap) Less(i, j int) bool  { return h[i].score < h[j].score }
func (h topKHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *topKHeap) Push(x any)         { *h = append(*h, x.(scoredDoc)) }
func (h *topKHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// checkPushTopK maintains a min-heap of size at most k holding the
// highest-scoring documents seen so far.
func checkPushTopK(h *topKHeap, docID uint64, score float64, k int) {
	if h.Len() < k {
		heap.Push(h, scoredDoc{score: score, docID: docID})
		return
	}
	if score > (*h)[0].score {
		(*h)[0] = scoredDoc{score: score, docID: docID}
		heap.Fix(h, 0)
	}
}

// minScoreInHeap returns the smallest score currently in the heap, or
// 0.0 if the heap has not yet reached capacity k.
func minScoreInHeap(h topKHeap, k int) float64 {
	if len(h) < k || len(h) == 0 {
		return 0.0
	}
	return h[0].score
}

// drainRanked converts a top-k min-heap into results sorted by
// (score desc, docID asc), matching every DAAT engine's return
// convention in spec.md §4.8.
func drainRanked(h topKHeap) []Result {
	results := make([]Result, len(h))
	for i, sd := range h {
		results[i] = Result{DocID: sd.docID, Score: sd.score}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}

// DAATConjunctive implements the AND traversal strategy (spec.md §4.8,
// P10): the returned set is the intersection of every term's doc set.
func DAATConjunctive(lists []*InvertedList, k int) ([]Result, error) {
	if len(lists) == 0 {
		return nil, nil
	}
	if len(lists) > 1 {
		sort.Slice(lists, func(i, j int) bool { return lists[i].DF() < lists[j].DF() })
	}

	var topk topKHeap
	for {
		var active []*InvertedList
		for _, lp := range lists {
			if lp.DocID < INFDocID {
				active = append(active, lp)
			}
		}
		if len(active) < len(lists) {
			break
		}

		var target uint64
		for _, lp := range active {
			if lp.DocID > target {
				target = lp.DocID
			}
		}
		if target >= INFDocID {
			break
		}

		for _, lp := range active {
			if lp.DocID < target {
				if _, err := lp.NextGEQ(target); err != nil {
					return nil, err
				}
			}
		}

		allMatch := true
		for _, lp := range active {
			if lp.DocID != target {
				allMatch = false
				break
			}
		}
		if allMatch {
			score := 0.0
			for _, lp := range active {
				if lp.DocID < INFDocID {
					score += lp.GetScore(target)
				}
			}
			checkPushTopK(&topk, target, score, k)
			for _, lp := range active {
				if _, err := lp.NextGEQ(target + 1); err != nil {
					return nil, err
				}
			}
		}
	}
	return drainRanked(topk), nil
}

// DAATDisjunctiveMaxScore implements the OR traversal strategy using
// the MaxScore upper-bound pruning optimization (spec.md §4.8, P8).
func DAATDisjunctiveMaxScore(lists []*InvertedList, k int) ([]Result, error) {
	if len(lists) == 0 {
		return nil, nil
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].MaxScore() > lists[j].MaxScore() })

	var topk topKHeap
	for {
		current := INFDocID
		for _, lp := range lists {
			if lp.DocID < current {
				current = lp.DocID
			}
		}
		if current >= INFDocID {
			break
		}

		upperBound := 0.0
		for _, lp := range lists {
			if lp.DocID <= current {
				upperBound += lp.MaxScore()
			}
		}

		threshold := minScoreInHeap(topk, k)
		if upperBound < threshold {
			for _, lp := range lists {
				if lp.DocID == current {
					if _, err := lp.NextGEQ(current + 1); err != nil {
						return nil, err
					}
				}
			}
			continue
		}

		score := 0.0
		for _, lp := range lists {
			if lp.DocID == current {
				score += lp.GetScore(current)
			}
		}
		checkPushTopK(&topk, current, score, k)
		for _, lp := range lists {
			if lp.DocID == current {
				if _, err := lp.NextGEQ(current + 1); err != nil {
					return nil, err
				}
			}
		}
	}
	return drainRanked(topk), nil
}

// DAATDisjunctiveBlockMaxWAND implements the BWAND-OR traversal
// strategy, using per-block BM25 upper bounds to skip whole blocks
// rather than only whole lists (spec.md §4.8, P9).
func DAATDisjunctiveBlockMaxWAND(lists []*InvertedList, k int) ([]Result, error) {
	if len(lists) == 0 {
		return nil, nil
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].MaxScore() > lists[j].MaxScore() })

	var topk topKHeap
	threshold := 0.0

	for {
		pivot := INFDocID
		for _, lp := range lists {
			if lp.DocID < pivot {
				pivot = lp.DocID
			}
		}
		if pivot >= INFDocID {
			break
		}

		ub := 0.0
		for _, lp := range lists {
			ub += lp.CurrBlockMax()
		}
		if ub < threshold {
			smallest := lists[0]
			for _, lp := range lists[1:] {
				if lp.DocID < smallest.DocID {
					smallest = lp
				}
			}
			if err := smallest.AdvanceToNextBlock(); err != nil {
				return nil, err
			}
			continue
		}

		score := 0.0
		for _, lp := range lists {
			if lp.DocID == pivot {
				score += lp.GetScore(pivot)
			}
		}
		if score > 0.0 {
			checkPushTopK(&topk, pivot, score, k)
			threshold = minScoreInHeap(topk, k)
		}

		for _, lp := range lists {
			if lp.DocID == pivot {
				if _, err := lp.NextGEQ(pivot + 1); err != nil {
					return nil, err
				}
			}
		}
	}
	return drainRanked(topk), nil
}
