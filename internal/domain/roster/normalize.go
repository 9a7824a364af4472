package roster

// NormalizeNumericEntries doubles every Number entry of the map in place and
// returns the same map. Non-numeric entries are left untouched.
//
// It returns ErrTypeProcessing when arg is nil, a nil *TagMap, or NotAMap.
// Each call doubles exactly once; the operation is not idempotent.
func NormalizeNumericEntries(arg TagArg) (*TagMap, error) {
	m, ok := arg.(*TagMap)
	if !ok || m == nil {
		return nil, ErrTypeProcessing
	}

	for _, key := range m.keys {
		if n, isNumber := m.values[key].(Number); isNumber {
			m.values[key] = n * 2
		}
	}
	return m, nil
}
