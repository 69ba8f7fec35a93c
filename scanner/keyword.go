package scanner

import "github.com/dhamidi/cstkit/cst"

// KeywordScan classifies an identifier that is spelled like a keyword.
type KeywordScan int

const (
	// Absent keywords do not exist in the version; the word is an
	// identifier.
	Absent KeywordScan = iota
	// Present keywords are active but the word may still be used as an
	// identifier.
	Present
	// Reserved words can only ever be the keyword.
	Reserved
)

func (k KeywordScan) String() string {
	switch k {
	case Present:
		return "present"
	case Reserved:
		return "reserved"
	}
	return "absent"
}

// Classify combines the version flags of a keyword.
func Classify(enabled, reserved bool) KeywordScan {
	switch {
	case reserved:
		return Reserved
	case enabled:
		return Present
	}
	return Absent
}

// KeywordValue describes the spellings of a keyword. It is one of
// KeywordAtom, KeywordSequence, KeywordOptional or KeywordChoice.
type KeywordValue interface {
	keywordValue()
}

type KeywordAtom struct{ Text string }
type KeywordSequence struct{ Values []KeywordValue }
type KeywordOptional struct{ Value KeywordValue }
type KeywordChoice struct{ Values []KeywordValue }

func (KeywordAtom) keywordValue()     {}
func (KeywordSequence) keywordValue() {}
func (KeywordOptional) keywordValue() {}
func (KeywordChoice) keywordValue()   {}

// CollectVariations expands v into every spelling it allows, in order.
func CollectVariations(v KeywordValue) []string {
	switch v := v.(type) {
	case KeywordAtom:
		return []string{v.Text}
	case KeywordOptional:
		return append([]string{""}, CollectVariations(v.Value)...)
	case KeywordChoice:
		var out []string
		for _, alt := range v.Values {
			out = append(out, CollectVariations(alt)...)
		}
		return out
	case KeywordSequence:
		out := []string{""}
		for _, part := range v.Values {
			suffixes := CollectVariations(part)
			next := make([]string, 0, len(out)*len(suffixes))
			for _, prefix := range out {
				for _, suffix := range suffixes {
					next = append(next, prefix+suffix)
				}
			}
			out = next
		}
		return out
	}
	return nil
}

// Scanned is the outcome of scanning one token. For an identifier that is
// spelled like a keyword, Keyword and Scan say which keyword and whether
// it applies.
type Scanned struct {
	Kind    cst.TokenKind
	Keyword cst.TokenKind
	Scan    KeywordScan
}

// Accepts reports whether the scanned token can stand for kind.
func (sc Scanned) Accepts(kind cst.TokenKind) bool {
	if sc.Keyword == "" {
		return sc.Kind == kind
	}
	switch sc.Scan {
	case Reserved:
		return kind == sc.Keyword
	case Present:
		return kind == sc.Keyword || kind == sc.Kind
	}
	return kind == sc.Kind
}

// Effective returns the kind the token most likely stands for: the
// keyword unless it is absent.
func (sc Scanned) Effective() cst.TokenKind {
	if sc.Keyword != "" && sc.Scan != Absent {
		return sc.Keyword
	}
	return sc.Kind
}
