package ordering

import "sort"

// fullSortDivisor is the cutoff between insertion-based selection and a
// plain full sort. Keeping fewer than n/fullSortDivisor positions makes
// the bounded buffer cheaper; past that the buffer churns enough that
// sorting everything wins.
const fullSortDivisor = 3

// TopK returns the first k positions of the permutation SortPositions
// would produce, without necessarily ordering all n rows. k == 0
// short-circuits to an empty result; k >= n degrades to a full sort.
//
// The selection keeps a sorted buffer of at most k accepted positions.
// Each candidate is binary-searched into the buffer; once the buffer is
// full a candidate must strictly beat the current worst entry, which
// preserves the stability of the equivalent full sort (an equal later
// row never displaces an earlier one).
func TopK(n int, cmp Comparator, k int) []int {
	if k <= 0 || n == 0 {
		return []int{}
	}
	if k >= n || k > n/fullSortDivisor {
		perm := SortPositions(n, cmp)
		if k > n {
			k = n
		}
		return perm[:k]
	}

	buf := make([]int, 0, k+1)
	for pos := 0; pos < n; pos++ {
		if len(buf) == k && cmp(pos, buf[k-1]) >= 0 {
			continue
		}
		at := sort.Search(len(buf), func(m int) bool {
			return cmp(pos, buf[m]) < 0
		})
		buf = append(buf, 0)
		copy(buf[at+1:], buf[at:])
		buf[at] = pos
		if len(buf) > k {
			buf = buf[:k]
		}
	}
	return buf
}
