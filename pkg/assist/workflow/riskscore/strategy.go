// Package riskscore turns likelihood and impact ratings into a risk
// score and band. The strategy is pluggable so organizations can swap
// the default 5x5 matrix for their own methodology.
package riskscore

// Strategy computes a score and band label from 1-5 likelihood and
// impact ratings.
type Strategy interface {
	Score(likelihood, impact float64) (score float64, band string)
}

// MatrixStrategy is the classic multiplicative 5x5 risk matrix.
type MatrixStrategy struct{}

func NewMatrixStrategy() MatrixStrategy { return MatrixStrategy{} }

// Score multiplies likelihood by impact and maps the product to a band:
// 1-4 Low, 5-9 Moderate, 10-15 High, 16-25 Critical.
func (MatrixStrategy) Score(likelihood, impact float64) (float64, string) {
	score := likelihood * impact
	switch {
	case score >= 16:
		return score, "Critical"
	case score >= 10:
		return score, "High"
	case score >= 5:
		return score, "Moderate"
	default:
		return score, "Low"
	}
}
