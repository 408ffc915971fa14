package load

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

func TestParseMessages(t *testing.T) {
	t.Run("keeps document order for json", func(t *testing.T) {
		src := `{
    "UNKNOWN_ERROR": {"en": "Unknown error", "vi": "Lỗi không xác định"},
    "NETWORK_ERROR": {"vi": "Lỗi mạng", "en": "Network error"},
    "AUTH_EXPIRED": {"en": "Session expired"}
}`
		msgs, err := ParseMessages("errors.json", []byte(src))
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "UNKNOWN_ERROR", msgs[0].Code)
		assert.Equal(t, "NETWORK_ERROR", msgs[1].Code)
		assert.Equal(t, "AUTH_EXPIRED", msgs[2].Code)
		assert.Equal(t, []schema.Translation{{Locale: "vi", Text: "Lỗi mạng"}, {Locale: "en", Text: "Network error"}}, msgs[1].Translations)
		assert.Equal(t, 2, msgs[0].Pos.Line)
	})

	t.Run("accepts yaml", func(t *testing.T) {
		src := "UNKNOWN_ERROR:\n  en: Unknown error\n  vi: Lỗi\nTIMEOUT:\n  en: \"Timed out: retry\"\n"
		msgs, err := ParseMessages("errors.yaml", []byte(src))
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		text, ok := msgs[1].Text("en")
		require.True(t, ok)
		assert.Equal(t, "Timed out: retry", text)
	})

	t.Run("parses the default catalog", func(t *testing.T) {
		src, err := defaultMessagesJSON()
		require.NoError(t, err)
		msgs, err := ParseMessages("errors.json", src)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "UNKNOWN_ERROR", msgs[0].Code)
		assert.Equal(t, "NETWORK_ERROR", msgs[1].Code)
	})

	t.Run("decodes json escapes", func(t *testing.T) {
		src := `{"E1": {"en": "Oops \ud83d\ude00", "vi": "a\/b \u00e9\n"}}`
		msgs, err := ParseMessages("errors.json", []byte(src))
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, []schema.Translation{{Locale: "en", Text: "Oops 😀"}, {Locale: "vi", Text: "a/b é\n"}}, msgs[0].Translations)
	})

	t.Run("reports the position of a bad entry", func(t *testing.T) {
		src := "{\n  \"A\": {\"en\": \"x\"},\n  \"B\": {\"en\": 5}\n}"
		_, err := ParseMessages("errors.json", []byte(src))
		var sfe *gen.SchemaFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, 3, sfe.Line)
		assert.Equal(t, 15, sfe.Column)
	})

	t.Run("accepts an empty catalog", func(t *testing.T) {
		msgs, err := ParseMessages("errors.json", []byte("{}"))
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})
}

func TestParseMessagesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "empty document", src: "", want: gen.ErrBlockNotFound},
		{name: "invalid syntax", src: `{"A": {"en": "x"`, want: gen.ErrMalformedEntry},
		{name: "root is a list", src: `["A"]`, want: gen.ErrMalformedEntry},
		{name: "flat value", src: `{"A": "text"}`, want: gen.ErrMalformedEntry},
		{name: "no translations", src: `{"A": {}}`, want: gen.ErrMalformedEntry},
		{name: "nested value", src: `{"A": {"en": {"x": "y"}}}`, want: gen.ErrMalformedEntry},
		{name: "number value", src: `{"A": {"en": 5}}`, want: gen.ErrMalformedEntry},
		{name: "null value", src: `{"A": {"en": null}}`, want: gen.ErrMalformedEntry},
		{name: "duplicate code", src: `{"A": {"en": "x"}, "A": {"en": "y"}}`, want: gen.ErrDuplicateKey},
		{name: "duplicate locale", src: `{"A": {"en": "x", "en": "y"}}`, want: gen.ErrDuplicateKey},
		{name: "empty code", src: `{"": {"en": "x"}}`, want: gen.ErrMalformedEntry},
		{name: "trailing content", src: `{"A": {"en": "x"}} {}`, want: gen.ErrMalformedEntry},
		{name: "missing colon", src: `{"A" {"en": "x"}}`, want: gen.ErrMalformedEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessages("errors.json", []byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
