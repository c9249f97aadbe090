package domain

// Calibration holds the per-source bias correction constants.
// AdjustmentFactor scales negative sentiment toward the source's baseline;
// BaselineNegativity is the source's characteristic negative skew (≤ 0).
type Calibration struct {
	AdjustmentFactor   float64
	BaselineNegativity float64
}

// DefaultCalibration applies to sources missing from the calibration table.
var DefaultCalibration = Calibration{AdjustmentFactor: 1.0, BaselineNegativity: -0.2}

// positiveBoost is applied to all non-negative raw scores regardless of
// source. Negative-skewed channels over-report negativity, so negative input
// is scaled per source, while positive content gets the same mild lift
// everywhere.
const positiveBoost = 1.1

// Corrector recalibrates raw polarity scores against per-source bias.
type Corrector struct {
	table map[string]Calibration
}

// NewCorrector builds a corrector from a calibration table. Collectors are
// expected to normalize source labels before records reach the corrector;
// see NormalizeSource.
func NewCorrector(table map[string]Calibration) *Corrector {
	t := make(map[string]Calibration, len(table))
	for source, cal := range table {
		t[source] = cal
	}
	return &Corrector{table: t}
}

// Correct applies bias correction to a raw polarity score and clamps the
// result to [-1, 1]. Sources are looked up verbatim; a source missing from
// the table never fails, it uses the default tuple.
func (c *Corrector) Correct(raw float64, source string) float64 {
	cal := c.calibrationFor(source)

	normalized := raw - cal.BaselineNegativity

	var adjusted float64
	if raw < 0 {
		adjusted = normalized*cal.AdjustmentFactor + cal.BaselineNegativity
	} else {
		adjusted = normalized*positiveBoost + cal.BaselineNegativity
	}

	return Clamp(adjusted)
}

func (c *Corrector) calibrationFor(source string) Calibration {
	if cal, ok := c.table[source]; ok {
		return cal
	}
	return DefaultCalibration
}

// CorrectionInfo describes the correction applied to one source, for the
// audit endpoint.
type CorrectionInfo struct {
	Source             string  `json:"source"`
	AdjustmentFactor   float64 `json:"adjustment_factor"`
	BaselineNegativity float64 `json:"baseline_negativity"`
	Description        string  `json:"description"`
}

var biasDescriptions = map[string]string{
	SourceTwitter:    "High negative bias - reduces negative weight by 30%",
	SourceFacebook:   "Medium negative bias - reduces negative weight by 20%",
	SourceNews:       "High negative bias - reduces negative weight by 40%",
	SourceGovernment: "Positive bias - increases negative weight by 20%",
	SourceCommunity:  "Balanced - no adjustment applied",
}

// Explain returns the calibration tuple and a human-readable description for
// a source.
func (c *Corrector) Explain(source string) CorrectionInfo {
	cal := c.calibrationFor(source)

	description, ok := biasDescriptions[source]
	if !ok {
		description = "Unknown bias pattern"
	}

	return CorrectionInfo{
		Source:             source,
		AdjustmentFactor:   cal.AdjustmentFactor,
		BaselineNegativity: cal.BaselineNegativity,
		Description:        description,
	}
}
