package data

// Entry is a single address along with the number of times it was seen
type Entry struct {
	IP    string
	Count int
}

// Summary contains aggregated numbers about one pass over a log file
type Summary struct {
	Lines      int
	Extracted  int
	Distinct   int
	Suspicious int
}
