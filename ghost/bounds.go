package ghost

// searchFrom finds the smallest i in [0, n] for which pred(i) is true,
// given pred is false for all indices below that point and true for all
// indices at or above it (a monotonic predicate over a sorted sequence).
// It probes outward from guess exponentially before bisecting, so a good
// guess turns the search near-constant time; a bad or out-of-range guess
// still terminates correctly, just via more probes.
func searchFrom(n, guess int, pred func(int) bool) int {
	if n == 0 {
		return 0
	}
	if guess < 0 {
		guess = 0
	}
	if guess > n-1 {
		guess = n - 1
	}

	if pred(guess) {
		lo, hi := guess, guess
		step := 1
		for lo > 0 && pred(lo-1) {
			hi = lo - 1
			lo -= step
			if lo < 0 {
				lo = 0
			}
			step *= 2
		}
		for lo < hi {
			mid := lo + (hi-lo)/2
			if pred(mid) {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		return lo
	}

	lo, hi := guess+1, guess+1
	step := 1
	for hi < n && !pred(hi) {
		lo = hi + 1
		hi += step
		if hi > n {
			hi = n
		}
		step *= 2
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		if pred(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// FindLowerBound returns the index of the first element of the sorted
// sequence described by n/less that is not less than target: the
// insertion point that keeps the sequence sorted while placing target
// before any equal element.
func FindLowerBound(n, guess int, less func(i int) bool) int {
	return searchFrom(n, guess, func(i int) bool { return !less(i) })
}

// FindHigherBound returns the index of the first element strictly greater
// than target, i.e. the insertion point placing target after any equal
// element.
func FindHigherBound(n, guess int, lessOrEqual func(i int) bool) int {
	return searchFrom(n, guess, func(i int) bool { return !lessOrEqual(i) })
}
