package internal

// ComputeOverallScore computes the normalized conversation success score C
// in [0, 1]:
//
//	C = (Σ w_i * (s_i / 2) + w_t * T) / (Σ w_i + w_t)
//
// where s_i are the set dimension scores (0-2, normalized by 2), w_i their
// weights, T the target completion ratio and w_t its weight. Unset
// dimensions contribute nothing on either side of the division. Dropped
// targets are already excluded from both target counts.
func ComputeOverallScore(r *Rating, cfg *Config) float64 {
	if len(r.Scores) == 0 {
		return 0
	}

	dimensionSum := 0.0
	weightSum := 0.0
	for dim, score := range r.Scores {
		w := cfg.DimensionWeight(dim)
		dimensionSum += w * float64(score) / 2.0
		weightSum += w
	}

	completed, introduced := r.TargetCounts()
	targetRatio := 0.0
	if introduced > 0 {
		targetRatio = float64(completed) / float64(introduced)
	}

	denominator := weightSum + cfg.TargetWeight
	if denominator == 0 {
		return 0
	}
	return (dimensionSum + cfg.TargetWeight*targetRatio) / denominator
}

// Passed reports whether a score clears the configured pass threshold
func Passed(score float64, cfg *Config) bool {
	return score >= cfg.PassThreshold
}

// PassFailLabel renders the pass/fail verdict the way the workbook and the
// report record it
func PassFailLabel(score float64, cfg *Config) string {
	if Passed(score, cfg) {
		return "PASS"
	}
	return "FAIL"
}
