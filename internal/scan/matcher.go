package scan

// Decision is the outcome of matching a candidate against the known identity
// sets.
type Decision int

const (
	// Undecided means no stored knowledge resolves the candidate; it must go
	// to the decision provider.
	Undecided Decision = iota
	// Accept means the candidate matches the reference identity.
	Accept
	// Reject means the candidate should be skipped and scanning resumed past
	// its end.
	Reject
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "undecided"
	}
}

// VectorSet is a read-only collection of identity embeddings supporting
// nearest-neighbor distance queries.
type VectorSet interface {
	// Len returns the number of vectors in the set.
	Len() int
	// MinDistance returns the smallest Euclidean distance between v and any
	// vector in the set, or +Inf for an empty set.
	MinDistance(v []float32) float64
}

// MutableVectorSet is a VectorSet that accepts new vectors. The session adds
// rejected representative embeddings to the exclusion set through it.
type MutableVectorSet interface {
	VectorSet
	Add(v []float32) error
}

// Matcher compares a candidate's representative embedding against the
// reference set (known target identity) and the exclusion set (previously
// rejected identities).
type Matcher struct {
	Tolerance  float64
	References VectorSet
	Exclusions VectorSet
}

// Match resolves a candidate.
//
// With a non-empty reference set the candidate is accepted iff its
// representative embedding lies within tolerance of any reference vector;
// otherwise it is rejected without touching the exclusion set. Without
// references, a candidate within tolerance of an excluded identity is
// rejected; everything else is undecided and goes to the operator.
func (m Matcher) Match(c Candidate) Decision {
	if m.References != nil && m.References.Len() > 0 {
		if m.References.MinDistance(c.Representative) <= m.Tolerance {
			return Accept
		}
		return Reject
	}

	if m.Exclusions != nil && m.Exclusions.Len() > 0 {
		if m.Exclusions.MinDistance(c.Representative) <= m.Tolerance {
			return Reject
		}
	}
	return Undecided
}
