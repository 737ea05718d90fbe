package split

import (
	"sort"

	"github.com/fitsplit/fitsplit"
)

// minDetectSamples is the shortest recording the detector will look at.
// Below this the window sizes collapse and every derivative is noise.
const minDetectSamples = 100

// DetectTransitions proposes up to k cut indices where the speed regime of
// the recording changes. The speed series is mean-filtered with samples
// lacking speed excluded from each window, the absolute centered derivative
// of the filtered profile is smoothed again, and the highest-scoring indices
// are picked greedily under a minimum pairwise separation of 15% of the
// recording. Results are ascending and deterministic; ties rank the lower
// index first. Recordings shorter than 100 samples yield nil.
func DetectTransitions(samples []fitsplit.Sample, k int) []int {
	n := len(samples)
	if n < minDetectSamples || k <= 0 {
		return nil
	}

	// The profile stays in m/s: ranking only compares profile differences
	// against each other, so any constant unit conversion cancels out.
	speeds := make([]float64, n)
	defined := make([]float64, n)
	for i, s := range samples {
		if s.Speed != nil {
			speeds[i] = *s.Speed
			defined[i] = 1
		}
	}

	w1 := max(10, n/100)
	profile := maskedWindowMeans(speeds, defined, w1)

	w2 := max(5, n/200)
	deriv := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := max(0, i-w2)
		hi := min(n-1, i+w2)
		d := profile[hi] - profile[lo]
		if d < 0 {
			d = -d
		}
		deriv[i] = d
	}

	w3 := max(5, n/50)
	smoothed := windowMeans(deriv, w3)

	minGap := int(0.15 * float64(n))
	var candidates []int
	for i := minGap + 1; i < n-1-minGap; i++ {
		candidates = append(candidates, i)
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if smoothed[candidates[a]] != smoothed[candidates[b]] {
			return smoothed[candidates[a]] > smoothed[candidates[b]]
		}
		return candidates[a] < candidates[b]
	})

	var picked []int
	for _, c := range candidates {
		if len(picked) == k {
			break
		}
		ok := true
		for _, p := range picked {
			if abs(c-p) < minGap {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, c)
		}
	}
	sort.Ints(picked)
	return picked
}

// EvenCuts spreads k cuts evenly over n samples, the fallback when
// detection finds nothing usable.
func EvenCuts(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	cuts := make([]int, k)
	for i := 1; i <= k; i++ {
		cuts[i-1] = i * n / (k + 1)
	}
	return cuts
}

// maskedWindowMeans returns the mean of the defined values over [i-w, i+w],
// clamped to the series bounds. Undefined positions contribute to neither
// sum nor count; a window with no defined samples yields 0.
func maskedWindowMeans(values, defined []float64, w int) []float64 {
	n := len(values)
	sums := make([]float64, n+1)
	counts := make([]float64, n+1)
	for i := range values {
		sums[i+1] = sums[i] + values[i]
		counts[i+1] = counts[i] + defined[i]
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := max(0, i-w)
		hi := min(n-1, i+w)
		if c := counts[hi+1] - counts[lo]; c > 0 {
			out[i] = (sums[hi+1] - sums[lo]) / c
		}
	}
	return out
}

// windowMeans returns the mean of values over [i-w, i+w], clamped to the
// series bounds, for every i. Prefix sums keep it linear.
func windowMeans(values []float64, w int) []float64 {
	n := len(values)
	prefix := make([]float64, n+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := max(0, i-w)
		hi := min(n-1, i+w)
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(hi-lo+1)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
