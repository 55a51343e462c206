package mlearn

import (
	"encoding/json"
	"testing"
)

// A cleanly separable dataset: class is 1 when the first feature is positive.
func separable(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		v := float64(i%7) - 3 // -3..3
		X[i] = []float64{v, float64(i % 5), 0.5}
		if v > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func TestTrainForestSeparable(t *testing.T) {
	X, y := separable(100)
	f, err := TrainForest(X, y, ForestConfig{Trees: 50, MaxDepth: 6, Seed: 42})
	if err != nil {
		t.Fatalf("Expected training to succeed, got %v", err)
	}

	correct := 0
	for i := range X {
		if f.Predict(X[i]) == y[i] {
			correct++
		}
	}
	if correct < 95 {
		t.Errorf("Expected near-perfect fit on separable data, got %d/100", correct)
	}
}

func TestTrainForestDeterministic(t *testing.T) {
	X, y := separable(60)

	a, _ := TrainForest(X, y, ForestConfig{Trees: 20, MaxDepth: 4, Seed: 42})
	b, _ := TrainForest(X, y, ForestConfig{Trees: 20, MaxDepth: 4, Seed: 42})

	probe := []float64{1.5, 2, 0.5}
	if a.PredictProba(probe) != b.PredictProba(probe) {
		t.Errorf("Expected identical models for identical seeds, got %v and %v",
			a.PredictProba(probe), b.PredictProba(probe))
	}
}

func TestPredictProbaBounds(t *testing.T) {
	X, y := separable(50)
	f, _ := TrainForest(X, y, ForestConfig{Trees: 30, Seed: 42})

	for _, probe := range [][]float64{{-3, 0, 0}, {0, 0, 0}, {3, 4, 1}} {
		p := f.PredictProba(probe)
		if p < 0 || p > 1 {
			t.Errorf("Expected probability in [0,1], got %v", p)
		}
	}
	if p := f.PredictProba([]float64{3, 0, 0.5}); p < 0.5 {
		t.Errorf("Expected high UP probability for clearly positive probe, got %v", p)
	}
}

func TestTrainForestConstantFeatures(t *testing.T) {
	// Two of three features carry no signal, so a sqrt-sized draw of one
	// feature usually lands on a constant column. Every tree must still
	// find the informative feature instead of collapsing to a root leaf.
	n := 80
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		v := float64(i%9) - 4
		X[i] = []float64{0, v, 1}
		if v > 0 {
			y[i] = 1
		}
	}

	f, err := TrainForest(X, y, ForestConfig{Trees: 40, MaxDepth: 5, Seed: 42})
	if err != nil {
		t.Fatalf("Expected training to succeed, got %v", err)
	}
	for i := range X {
		if f.Predict(X[i]) != y[i] {
			t.Fatalf("Expected clean fit despite constant features, row %d misclassified", i)
		}
	}
	if p := f.PredictProba([]float64{0, 4, 1}); p != 1.0 {
		t.Errorf("Expected every tree to vote UP for a clearly positive row, got %v", p)
	}
}

func TestTrainForestNoSamples(t *testing.T) {
	if _, err := TrainForest(nil, nil, ForestConfig{}); err == nil {
		t.Errorf("Expected error for empty training set")
	}
}

func TestTrainForestSingleClass(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	y := []int{1, 1, 1}
	f, err := TrainForest(X, y, ForestConfig{Trees: 10, Seed: 42})
	if err != nil {
		t.Fatalf("Expected training on a single class to succeed, got %v", err)
	}
	if f.Predict([]float64{0, 0}) != 1 {
		t.Errorf("Expected constant class 1")
	}
	if f.PredictProba([]float64{0, 0}) != 1.0 {
		t.Errorf("Expected probability 1.0, got %v", f.PredictProba([]float64{0, 0}))
	}
}

func TestForestJSONRoundTrip(t *testing.T) {
	X, y := separable(60)
	f, _ := TrainForest(X, y, ForestConfig{Trees: 15, MaxDepth: 4, Seed: 42})

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Expected marshal to succeed, got %v", err)
	}

	var loaded Forest
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Expected unmarshal to succeed, got %v", err)
	}
	if loaded.NumFeatures != f.NumFeatures || len(loaded.Trees) != len(f.Trees) {
		t.Fatalf("Expected same shape back, got %d features %d trees", loaded.NumFeatures, len(loaded.Trees))
	}

	for _, probe := range [][]float64{{-2, 1, 0.5}, {2, 3, 0.5}} {
		if loaded.PredictProba(probe) != f.PredictProba(probe) {
			t.Errorf("Expected identical predictions after reload for %v", probe)
		}
	}
}
