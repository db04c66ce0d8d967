package keyValueDb

// PrefixEnd returns the smallest key that is strictly greater than every key
// carrying the given prefix, suitable as an exclusive iterator end bound.
// Returns nil for an empty prefix or a prefix of only 0xff bytes (unbounded).
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// StartAfter returns the smallest key strictly greater than key, suitable as
// an inclusive iterator start bound implementing an exclusive cursor.
func StartAfter(key []byte) []byte {
	start := make([]byte, len(key)+1)
	copy(start, key)
	return start
}
