package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `xml:"name"`
	Count int    `xml:"count"`
}

func TestDecodeXML_Basic(t *testing.T) {
	input := `<?xml version="1.0"?><doc><name>alpha</name><count>3</count></doc>`

	var doc testDoc
	err := DecodeXML(strings.NewReader(input), &doc)
	require.NoError(t, err)
	assert.Equal(t, "alpha", doc.Name)
	assert.Equal(t, 3, doc.Count)
}

func TestDecodeXML_Latin1Charset(t *testing.T) {
	// 0xF1 is latin-1 for n-tilde.
	input := `<?xml version="1.0" encoding="ISO-8859-1"?><doc><name>Se` + "\xf1" + `or</name><count>1</count></doc>`

	var doc testDoc
	err := DecodeXML(strings.NewReader(input), &doc)
	require.NoError(t, err)
	assert.Equal(t, "Señor", doc.Name)
}

func TestDecodeXML_UnknownCharset(t *testing.T) {
	input := `<?xml version="1.0" encoding="NOT-A-CHARSET"?><doc><name>x</name></doc>`

	var doc testDoc
	err := DecodeXML(strings.NewReader(input), &doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charset")
}

func TestDecodeXML_Malformed(t *testing.T) {
	input := `<doc><name>unclosed`

	var doc testDoc
	err := DecodeXML(strings.NewReader(input), &doc)
	assert.Error(t, err)
}
