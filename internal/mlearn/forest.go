// Package mlearn implements a small gini-impurity random forest for binary
// classification, with deterministic seeded training and a JSON form so
// trained models survive a restart.
package mlearn

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ForestConfig controls training. Zero values fall back to the defaults
// used throughout the pipeline.
type ForestConfig struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

func (c ForestConfig) withDefaults() ForestConfig {
	if c.Trees <= 0 {
		c.Trees = 300
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 8
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	return c
}

// Node is one decision point. Leaves carry the majority class of the
// training samples that reached them.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Class     int     `json:"class,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Forest is a trained ensemble. PredictProba is the fraction of trees
// voting for class 1.
type Forest struct {
	Trees       []*Node `json:"trees"`
	NumFeatures int     `json:"num_features"`
}

var ErrNoSamples = errors.New("no training samples")

// TrainForest fits an ensemble on X (rows of features) and binary labels y.
// Each tree sees a bootstrap resample and considers a random sqrt-sized
// feature subset at every split. The same seed always yields the same model.
func TrainForest(X [][]float64, y []int, cfg ForestConfig) (*Forest, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, ErrNoSamples
	}
	cfg = cfg.withDefaults()

	numFeatures := len(X[0])
	mtry := int(math.Sqrt(float64(numFeatures)))
	if mtry < 1 {
		mtry = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	f := &Forest{Trees: make([]*Node, cfg.Trees), NumFeatures: numFeatures}

	indices := make([]int, len(X))
	for t := 0; t < cfg.Trees; t++ {
		for i := range indices {
			indices[i] = rng.Intn(len(X))
		}
		f.Trees[t] = growTree(X, y, indices, mtry, cfg.MaxDepth, cfg.MinSamplesSplit, rng)
	}
	return f, nil
}

// Predict returns the majority-vote class for x.
func (f *Forest) Predict(x []float64) int {
	if f.PredictProba(x) >= 0.5 {
		return 1
	}
	return 0
}

// PredictProba returns the probability of class 1 for x.
func (f *Forest) PredictProba(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	votes := 0
	for _, root := range f.Trees {
		if classify(root, x) == 1 {
			votes++
		}
	}
	return float64(votes) / float64(len(f.Trees))
}

func classify(n *Node, x []float64) int {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Class
}

func growTree(X [][]float64, y []int, indices []int, mtry, maxDepth, minSplit int, rng *rand.Rand) *Node {
	ones := 0
	for _, i := range indices {
		ones += y[i]
	}

	// Pure node, exhausted depth, or too few samples to split.
	if ones == 0 || ones == len(indices) || maxDepth == 0 || len(indices) < minSplit {
		return leaf(ones, len(indices))
	}

	feature, threshold, ok := bestSplit(X, y, indices, mtry, rng)
	if !ok {
		return leaf(ones, len(indices))
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf(ones, len(indices))
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(X, y, left, mtry, maxDepth-1, minSplit, rng),
		Right:     growTree(X, y, right, mtry, maxDepth-1, minSplit, rng),
	}
}

func leaf(ones, total int) *Node {
	class := 0
	if ones*2 >= total {
		class = 1
	}
	return &Node{Leaf: true, Class: class}
}

// bestSplit scans a random feature subset for the threshold with the lowest
// weighted gini impurity. Candidate thresholds are midpoints between
// consecutive distinct sorted values. Features that are constant over the
// node's samples do not count toward the mtry limit, so the scan keeps
// drawing from the shuffled feature order until mtry splittable features
// have been examined or the features run out.
func bestSplit(X [][]float64, y []int, indices []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(X[indices[0]])
	order := rng.Perm(numFeatures)

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	examined := 0
	values := make([]float64, len(indices))
	for _, feature := range order {
		if examined >= mtry {
			break
		}
		for i, idx := range indices {
			values[i] = X[idx][feature]
		}
		sort.Float64s(values)

		constant := true
		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			constant = false
			threshold := (values[i] + values[i-1]) / 2
			g := splitGini(X, y, indices, feature, threshold)
			if g < bestGini {
				bestGini = g
				bestFeature = feature
				bestThreshold = threshold
			}
		}
		if !constant {
			examined++
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func splitGini(X [][]float64, y []int, indices []int, feature int, threshold float64) float64 {
	var leftN, leftOnes, rightN, rightOnes int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			leftN++
			leftOnes += y[i]
		} else {
			rightN++
			rightOnes += y[i]
		}
	}
	total := float64(leftN + rightN)
	return float64(leftN)/total*gini(leftOnes, leftN) + float64(rightN)/total*gini(rightOnes, rightN)
}

func gini(ones, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(ones) / float64(n)
	return 2 * p * (1 - p)
}
