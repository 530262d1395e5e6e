package dashboard

import "fmt"

// Risk score boundaries between levels.
const (
	LowRiskThreshold    = 0.3
	MediumRiskThreshold = 0.6
	HighRiskThreshold   = 0.8
)

// RiskLevel buckets a 0..1 risk score.
func RiskLevel(score float64) Severity {
	switch {
	case score >= HighRiskThreshold:
		return SeverityCritical
	case score >= MediumRiskThreshold:
		return SeverityHigh
	case score >= LowRiskThreshold:
		return SeverityMedium
	}
	return SeverityLow
}

// FormatRiskScore renders a 0..1 score as a percentage with one decimal.
func FormatRiskScore(score float64) string {
	return FormatPercentage(score)
}

func FormatPercentage(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
