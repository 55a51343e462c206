package mlearn

import "fmt"

// Split is one forward-chaining fold: training rows are [0, TrainEnd) and
// test rows are [TestStart, TestEnd), with TestStart == TrainEnd. The model
// is never evaluated on rows older than any it trained on.
type Split struct {
	TrainEnd  int
	TestStart int
	TestEnd   int
}

// TimeSeriesSplit partitions n ordered rows into k expanding-window folds.
// Each fold's test window has n/(k+1) rows; the first fold trains on
// everything before the first test window, and later folds grow the
// training window by one test-window each.
func TimeSeriesSplit(n, k int) ([]Split, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	testSize := n / (k + 1)
	if testSize < 1 {
		return nil, fmt.Errorf("%d rows cannot form %d folds", n, k)
	}

	splits := make([]Split, k)
	for i := 0; i < k; i++ {
		start := n - (k-i)*testSize
		splits[i] = Split{TrainEnd: start, TestStart: start, TestEnd: start + testSize}
	}
	return splits, nil
}
