package systems

import "math"

// RadiationModel is a linear-quadratic cell survival model whose effective
// dose is scaled by an oxygen modification factor (OER / OERMax).
type RadiationModel struct {
	Alpha       float64 // Gy^-1
	Beta        float64 // Gy^-2
	OERMax      float64 // enhancement ratio of fully oxic tissue
	OERK        float64 // mmHg at which half the enhancement is reached
	MMHgPerUnit float64 // converts field concentration to oxygen tension
}

// OER returns the oxygen enhancement ratio at the given tension (mmHg):
// (OERMax*K + p) / (K + p). It is 1 under anoxia and tends to OERMax.
func (m RadiationModel) OER(pO2 float64) float64 {
	if pO2 < 0 {
		pO2 = 0
	}
	if m.OERK <= 0 {
		return m.OERMax
	}
	return (m.OERMax*m.OERK + pO2) / (m.OERK + pO2)
}

// ModificationFactor returns OER/OERMax for a field concentration. Anoxic
// cells see 1/OERMax of the physical dose.
func (m RadiationModel) ModificationFactor(oxygen float64) float64 {
	if m.OERMax <= 0 {
		return 1
	}
	return m.OER(oxygen*m.MMHgPerUnit) / m.OERMax
}

// Survival returns the probability that a cell at the given oxygen level
// survives doses fractions of doseSize Gy each.
func (m RadiationModel) Survival(oxygen float64, doses int, doseSize float64) float64 {
	if doses <= 0 || doseSize <= 0 {
		return 1
	}
	d := doseSize * m.ModificationFactor(oxygen)
	return math.Exp(-float64(doses) * (m.Alpha*d + m.Beta*d*d))
}
