package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText_ValidUTF8(t *testing.T) {
	assert.Equal(t, "Срок исполнения", decodeText([]byte("Срок исполнения"), nil))
}

func TestDecodeText_StripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("цена")...)
	assert.Equal(t, "цена", decodeText(data, nil))
}

func TestDecodeText_DropsInvalidBytes(t *testing.T) {
	data := []byte("ab\xffcd\xfe")
	assert.Equal(t, "abcd", decodeText(data, nil))
}

func TestDecodeText_UTF16LE(t *testing.T) {
	// BOM + "ок" in UTF-16LE.
	data := []byte{0xFF, 0xFE, 0x3E, 0x04, 0x3A, 0x04}
	assert.Equal(t, "ок", decodeText(data, nil))
}

func TestDecodeText_FallbackCharset(t *testing.T) {
	enc, err := lookupCharset("windows-1251")
	require.NoError(t, err)

	// "цена" in windows-1251.
	data := []byte{0xF6, 0xE5, 0xED, 0xE0}
	assert.Equal(t, "цена", decodeText(data, enc))
	// Valid UTF-8 is never re-decoded.
	assert.Equal(t, "цена", decodeText([]byte("цена"), enc))
}

func TestLookupCharset(t *testing.T) {
	enc, err := lookupCharset("")
	require.NoError(t, err)
	assert.Nil(t, enc)

	_, err = lookupCharset("klingon-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}
