package kcgx

// ValidateResult is what a Validator hands back for one pair. A
// validator may narrow Value to a smaller slice of the original buffer
// and set exactly one of IntVal/DoubleVal/StrStart.
type ValidateResult struct {
	Valid bool
	Type  ValueType

	// Value, if non-nil, replaces the pair's value with a (possibly
	// narrower) slice of the original buffer.
	Value []byte

	IntVal    int64
	DoubleVal float64

	// StrStart is the offset, within the *original* value buffer, at
	// which the validated substring begins. The wire format serializes
	// this as valueStart - parseStart, an offset into the emitted value
	// bytes rather than a pointer; see DESIGN.md for why this package
	// settled on that sign convention.
	StrStart int
}

// Validator checks and optionally coerces one key's value.
type Validator func(key, value []byte) ValidateResult

// KeyTable is the caller-supplied table of recognized keys and their
// validators, searched linearly and in order; the first matching entry
// wins. A key with no Validator is emitted with State == StateUnchecked.
type KeyTable []KeyEntry

// KeyEntry names one recognized key and its optional validator.
type KeyEntry struct {
	Name      string
	Validator Validator
}

// dispatch scans table for key, invokes its validator if any, and fills
// in p's State/Type/typed-result/KeyBucketIndex fields in place. The
// bucket index is the table size when the key is not found, signaling
// "unknown" to the caller.
func (table KeyTable) dispatch(p *Pair) {
	key := string(p.Key)
	for i, entry := range table {
		if entry.Name != key {
			continue
		}
		p.KeyBucketIndex = i
		if entry.Validator == nil {
			p.State = StateUnchecked
			return
		}
		res := entry.Validator(p.Key, p.Value)
		if !res.Valid {
			p.State = StateInvalid
			return
		}
		p.State = StateValid
		p.Type = res.Type
		if res.Value != nil {
			p.Value = res.Value
		}
		switch res.Type {
		case TypeInteger:
			p.IntVal = res.IntVal
		case TypeDouble:
			p.DoubleVal = res.DoubleVal
		case TypeString:
			p.StrOff = res.StrStart
		}
		return
	}
	p.KeyBucketIndex = len(table)
	p.State = StateUnchecked
}
