package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dhamidi/cstkit/cst"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, Reserved, Classify(true, true))
	assert.Equal(t, Reserved, Classify(false, true))
	assert.Equal(t, Present, Classify(true, false))
	assert.Equal(t, Absent, Classify(false, false))
}

func TestScannedAccepts(t *testing.T) {
	tests := []struct {
		name    string
		scanned Scanned
		kind    cst.TokenKind
		want    bool
	}{
		{"plain token", Scanned{Kind: "Plus"}, "Plus", true},
		{"plain token mismatch", Scanned{Kind: "Plus"}, "Minus", false},
		{"reserved keyword", Scanned{Kind: "Identifier", Keyword: "IfKeyword", Scan: Reserved}, "IfKeyword", true},
		{"reserved as identifier", Scanned{Kind: "Identifier", Keyword: "IfKeyword", Scan: Reserved}, "Identifier", false},
		{"present keyword", Scanned{Kind: "Identifier", Keyword: "FromKeyword", Scan: Present}, "FromKeyword", true},
		{"present as identifier", Scanned{Kind: "Identifier", Keyword: "FromKeyword", Scan: Present}, "Identifier", true},
		{"absent keyword", Scanned{Kind: "Identifier", Keyword: "FromKeyword", Scan: Absent}, "FromKeyword", false},
		{"absent as identifier", Scanned{Kind: "Identifier", Keyword: "FromKeyword", Scan: Absent}, "Identifier", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scanned.Accepts(tt.kind))
		})
	}
}

func TestCollectVariations(t *testing.T) {
	v := KeywordSequence{Values: []KeywordValue{
		KeywordAtom{Text: "bytes"},
		KeywordOptional{Value: KeywordChoice{Values: []KeywordValue{
			KeywordAtom{Text: "1"},
			KeywordAtom{Text: "32"},
		}}},
	}}
	assert.Equal(t, []string{"bytes", "bytes1", "bytes32"}, CollectVariations(v))
	assert.Equal(t, []string{"x"}, CollectVariations(KeywordAtom{Text: "x"}))
}
