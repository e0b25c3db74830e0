package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/testutil"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

func TestClassify(t *testing.T) {
	xmlSequence, err := propertylist.Encode(types.Sequence{types.String("a")}, propertylist.FormatXML)
	require.NoError(t, err)
	xmlString, err := propertylist.Encode(types.String("just a string"), propertylist.FormatXML)
	require.NoError(t, err)

	tests := []struct {
		name       string
		plaintext  []byte
		wantClass  types.Classification
		wantSource types.RecordSource
		wantRecord bool
		wantFormat string
	}{
		{
			name:       "binary plist map",
			plaintext:  testutil.StructuredPlaintext(t),
			wantClass:  types.ClassStructured,
			wantSource: types.SourcePlist,
			wantRecord: true,
			wantFormat: "Binary",
		},
		{
			name:       "xml plist sequence",
			plaintext:  xmlSequence,
			wantClass:  types.ClassStructured,
			wantSource: types.SourcePlist,
			wantRecord: true,
			wantFormat: "XML",
		},
		{
			name:      "xml plist scalar root",
			plaintext: xmlString,
			wantClass: types.ClassOpaque,
		},
		{
			name:       "json object",
			plaintext:  []byte(`{"name": "AirTag", "battery": 3}`),
			wantClass:  types.ClassStructured,
			wantSource: types.SourceJSON,
		},
		{
			name:       "json array with leading whitespace",
			plaintext:  []byte("\n  [1, 2, 3]"),
			wantClass:  types.ClassStructured,
			wantSource: types.SourceJSON,
		},
		{
			name:       "empty json object",
			plaintext:  []byte("{}"),
			wantClass:  types.ClassStructured,
			wantSource: types.SourceJSON,
		},
		{
			name:      "openstep style text",
			plaintext: []byte("a = b;"),
			wantClass: types.ClassOpaque,
		},
		{
			name:      "openstep dictionary",
			plaintext: []byte(`{ name = "AirTag"; }`),
			wantClass: types.ClassOpaque,
		},
		{
			name:      "truncated json",
			plaintext: []byte(`{"name": `),
			wantClass: types.ClassOpaque,
		},
		{
			name:      "random bytes",
			plaintext: []byte{0x00, 0xff, 0x13, 0x37, 0x80},
			wantClass: types.ClassOpaque,
		},
		{
			name:      "empty",
			plaintext: []byte{},
			wantClass: types.ClassOpaque,
		},
	}

	classifier := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.plaintext)
			assert.Equal(t, tt.wantClass, got.Class)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantRecord, got.Record != nil)
			assert.Equal(t, tt.wantFormat, got.RecordFormat)
		})
	}
}
