package anomaly

// Fusion weights. The rule score is auditable and needs no warmup; the
// learned score adds pattern detection but cold-starts and drifts, so it
// never dominates.
const (
	fusionRuleWeight    = 0.7
	fusionLearnedWeight = 0.3
)

// Fuse blends the rule and learned scores into the authoritative anomaly
// score, clipped to [0,1] and rounded to two decimals. Monotonic in both
// arguments.
func Fuse(ruleScore, learnedScore float64) float64 {
	return round2(clip(fusionRuleWeight*ruleScore + fusionLearnedWeight*learnedScore))
}
