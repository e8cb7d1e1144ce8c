package model

// ScorePair is a single benchmark result instance.
type ScorePair struct {
	// SingleCore is the single-core score.
	SingleCore uint32 `json:"single_core"`

	// MultiCore is the multi-core score.
	MultiCore uint32 `json:"multi_core"`
}

// Series is the ordered collection of score pairs associated with one
// normalized key. Order is fetch/storage order.
type Series struct {
	// Name is the display name handed to renderers.
	// It is the identifier as typed by the user unless an alias is configured.
	Name string `json:"name"`

	// Identifier is the identifier the series was requested with.
	Identifier string `json:"identifier"`

	// Key is the normalized storage key.
	Key string `json:"key"`

	// Pairs holds the score pairs in storage order.
	Pairs []ScorePair `json:"pairs"`
}

// NewSeries creates a Series. The display name defaults to the identifier.
func NewSeries(identifier, key string, pairs []ScorePair) *Series {
	if pairs == nil {
		pairs = make([]ScorePair, 0)
	}
	return &Series{
		Name:       identifier,
		Identifier: identifier,
		Key:        key,
		Pairs:      pairs,
	}
}

// Len returns the number of score pairs.
func (s *Series) Len() int {
	return len(s.Pairs)
}

// SingleCore returns the single-core scores as a sequence parallel to MultiCore.
func (s *Series) SingleCore() []uint32 {
	out := make([]uint32, len(s.Pairs))
	for i, p := range s.Pairs {
		out[i] = p.SingleCore
	}
	return out
}

// MultiCore returns the multi-core scores as a sequence parallel to SingleCore.
func (s *Series) MultiCore() []uint32 {
	out := make([]uint32, len(s.Pairs))
	for i, p := range s.Pairs {
		out[i] = p.MultiCore
	}
	return out
}
