package factorgraph

// FactorList computes the normalization constant of a set of factors.
type FactorList []Factor

// LogNormalization resets every marginal touched by the list, re-sends all
// messages and adds each factor's own log normalization. The result is the
// log of the total probability of the evidence encoded by the factors.
func (l FactorList) LogNormalization(g *Graph) (float64, error) {
	for _, f := range l {
		f.ResetMarginals(g)
	}

	var sumLogZ float64
	for _, f := range l {
		for i := range f.NumMessages() {
			logZ, err := f.SendMessage(g, i)
			if err != nil {
				return 0, err
			}
			sumLogZ += logZ
		}
	}

	var sumLogS float64
	for _, f := range l {
		sumLogS += f.LogNormalization(g)
	}
	return sumLogZ + sumLogS, nil
}
