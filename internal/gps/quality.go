package gps

// Quality is the discrete signal tier derived from horizontal accuracy.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
	QualityNone      Quality = "none"
)

// Horizontal accuracy thresholds in meters.
const (
	accuracyExcellentM = 5.0
	accuracyGoodM      = 10.0
	accuracyFairM      = 20.0
	accuracyPoorM      = 50.0
)

// Classify maps horizontal accuracy in meters to a quality tier.
func Classify(accuracyM float64) Quality {
	switch {
	case accuracyM <= accuracyExcellentM:
		return QualityExcellent
	case accuracyM <= accuracyGoodM:
		return QualityGood
	case accuracyM <= accuracyFairM:
		return QualityFair
	case accuracyM <= accuracyPoorM:
		return QualityPoor
	default:
		return QualityNone
	}
}

// Usable reports whether fixes at this tier may feed distance and pace.
func (q Quality) Usable() bool {
	return q != QualityNone
}

type Signal struct {
	AccuracyM float64 `json:"accuracy_m"`
	Quality   Quality `json:"quality"`
}

// SignalFor builds the signal annotation for a given horizontal accuracy.
func SignalFor(accuracyM float64) Signal {
	return Signal{AccuracyM: accuracyM, Quality: Classify(accuracyM)}
}
