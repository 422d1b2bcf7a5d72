package profile

import "math"

// Conversion factors to metric.
const (
	KgPerPound = 0.453592
	CmPerFoot  = 30.48
	CmPerInch  = 2.54
	CmPerMeter = 100.0
)

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// PoundsToKg converts pounds to kilograms without rounding.
func PoundsToKg(lb float64) float64 {
	return lb * KgPerPound
}

// FeetInchesToCm converts a feet+inches height, rounded to 2 decimals.
func FeetInchesToCm(feet, inches float64) float64 {
	return Round(feet*CmPerFoot+inches*CmPerInch, 2)
}

// MetersToCm converts a decimal meter height, rounded to 1 decimal.
func MetersToCm(m float64) float64 {
	return Round(m*CmPerMeter, 1)
}

// MetersAndCmToCm converts an "N m M cm" height, rounded to 1 decimal.
func MetersAndCmToCm(m, cm float64) float64 {
	return Round(m*CmPerMeter+cm, 1)
}

// BMI computes the body-mass index rounded to one decimal.
func BMI(weightKg, heightCm float64) float64 {
	heightM := heightCm / CmPerMeter
	return Round(weightKg/(heightM*heightM), 1)
}

// CategorizeBMI maps a BMI to its bucket.
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}
