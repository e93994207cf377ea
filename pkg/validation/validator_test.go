package validation_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-catalog-sync/pkg/validation"
)

const validEntry = `{"id":"g1","title":"Game One","image":"https://img.test/g1.png","url":"https://play.test/g1"}`

func TestValidator_Validate(t *testing.T) {
	v := validation.New()

	t.Run("Valid catalog is sanitized and accepted", func(t *testing.T) {
		raw := []byte(`[{"id":" g1 ","title":"  Pac Man  ","image":"https://img.test/pac.png","url":"https://play.test/pac","category":"arcade"}]`)

		result := v.Validate(raw)

		require.True(t, result.Valid, "errors: %v", result.Errors)
		require.Len(t, result.Sanitized, 1)
		entry := result.Sanitized[0]
		assert.Equal(t, "g1", entry.ID, "fields should be trimmed")
		assert.Equal(t, "Pac Man", entry.Title)
		assert.Equal(t, "https://img.test/pac.png", entry.ImageURL)
		assert.Equal(t, "arcade", entry.Category)
	})

	t.Run("Control characters are stripped", func(t *testing.T) {
		raw := []byte(`[{"id":"g1","title":"Pac\u0007Man","image":"https://img.test/p.png","url":"https://play.test/p"}]`)

		result := v.Validate(raw)

		require.True(t, result.Valid, "errors: %v", result.Errors)
		assert.Equal(t, "PacMan", result.Sanitized[0].Title)
	})

	t.Run("Overlong plain fields are truncated", func(t *testing.T) {
		longTitle := strings.Repeat("x", 500)
		raw := []byte(fmt.Sprintf(`[{"id":"g1","title":%q,"image":"https://img.test/p.png","url":"https://play.test/p"}]`, longTitle))

		result := v.Validate(raw)

		require.True(t, result.Valid, "errors: %v", result.Errors)
		assert.Len(t, result.Sanitized[0].Title, 200)
	})

	t.Run("Unsafe markup rejects the entry rather than cleaning it", func(t *testing.T) {
		raw := []byte(`[{"id":"g1","title":"  Pac<script>alert(1)</script>Man  ","image":"https://img.test/p.png","url":"https://play.test/p"}]`)

		result := v.Validate(raw)

		require.False(t, result.Valid)
		assert.Nil(t, result.Sanitized, "a rejected batch must not yield a partial catalog")
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "unsafe content")
	})

	t.Run("Script-capable URL schemes are rejected", func(t *testing.T) {
		raw := []byte(`[{"id":"g1","title":"Game","image":"https://img.test/p.png","url":"javascript:alert(1)"}]`)

		result := v.Validate(raw)

		require.False(t, result.Valid)
	})

	t.Run("Inline event handlers are rejected", func(t *testing.T) {
		raw := []byte(`[{"id":"g1","title":"Game","image":"https://img.test/p.png","url":"https://play.test/p","description":"<img onerror=alert(1)>"}]`)

		result := v.Validate(raw)

		require.False(t, result.Valid)
	})

	t.Run("One bad entry invalidates the whole batch", func(t *testing.T) {
		entries := []string{
			validEntry,
			`{"id":"g2","title":"Game Two","image":"https://img.test/2.png","url":"https://play.test/2"}`,
			`{"id":"g3","image":"https://img.test/3.png","url":"https://play.test/3"}`,
			`{"id":"g4","title":"Game Four","image":"https://img.test/4.png","url":"https://play.test/4"}`,
			`{"id":"g5","title":"Game Five","image":"https://img.test/5.png","url":"https://play.test/5"}`,
		}
		raw := []byte("[" + strings.Join(entries, ",") + "]")

		result := v.Validate(raw)

		require.False(t, result.Valid, "a catalog with a title-less entry must be rejected whole")
		assert.Nil(t, result.Sanitized)
		require.NotEmpty(t, result.Errors)
		assert.Contains(t, result.Errors[0], "entry 2")
		assert.Contains(t, result.Errors[0], "Title")
	})

	t.Run("Non-string field types are rejected", func(t *testing.T) {
		raw := []byte(`[{"id":42,"title":"Game","image":"https://img.test/p.png","url":"https://play.test/p"}]`)

		result := v.Validate(raw)

		require.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "entry 0")
	})

	t.Run("Non-array payloads are rejected", func(t *testing.T) {
		for name, raw := range map[string]string{
			"object": `{"games":[]}`,
			"string": `"hello"`,
			"null":   `null`,
		} {
			result := v.Validate([]byte(raw))
			require.False(t, result.Valid, "payload %s should be rejected", name)
			assert.Contains(t, result.Errors[0], "not a JSON array")
		}
	})

	t.Run("Oversized catalogs are rejected", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("[")
		for i := 0; i < 1001; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(fmt.Sprintf(`{"id":"g%d","title":"Game","image":"https://img.test/p.png","url":"https://play.test/p"}`, i))
		}
		sb.WriteString("]")

		result := v.Validate([]byte(sb.String()))

		require.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "maximum is 1000")
	})

	t.Run("Empty catalog is valid", func(t *testing.T) {
		result := v.Validate([]byte(`[]`))

		require.True(t, result.Valid)
		assert.Empty(t, result.Sanitized)
	})
}

func TestValidator_URLRules(t *testing.T) {
	v := validation.New()

	urlCases := map[string]string{
		"relative URL":      `/games/pac`,
		"ftp scheme":        `ftp://files.test/pac`,
		"empty host":        `https:///pac`,
		"loopback name":     `https://localhost/x`,
		"loopback address":  `https://127.0.0.1/x`,
		"ipv6 loopback":     `https://[::1]/x`,
		"unspecified host":  `https://0.0.0.0/x`,
		"path traversal":    `https://game.example/a/../../etc`,
		"traversal in host": `https://game..example/x`,
	}
	for name, playURL := range urlCases {
		t.Run(name+" is rejected", func(t *testing.T) {
			raw := []byte(fmt.Sprintf(`[{"id":"g1","title":"Game","image":"https://img.test/p.png","url":%q}]`, playURL))

			result := v.Validate(raw)

			require.False(t, result.Valid, "url %q should be rejected", playURL)
		})
	}

	t.Run("Accepted URLs are canonically re-serialized", func(t *testing.T) {
		raw := []byte(`[{"id":"g1","title":"Game","image":" https://img.test/a%20b.png ","url":"https://PLAY.test:443/pac?x=1"}]`)

		result := v.Validate(raw)

		require.True(t, result.Valid, "errors: %v", result.Errors)
		entry := result.Sanitized[0]
		assert.Equal(t, "https://img.test/a%20b.png", entry.ImageURL)
		// Round-trip parity: sanitized URLs must be re-parseable to the same form.
		again, err := validation.NormalizeURL(entry.PlayURL)
		require.NoError(t, err)
		assert.Equal(t, entry.PlayURL, again)
	})
}

func TestValidateSourceURL(t *testing.T) {
	t.Run("Plain http is rejected when https is enforced", func(t *testing.T) {
		_, err := validation.ValidateSourceURL("http://insecure.example/catalog.json", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})

	t.Run("Plain http is allowed when enforcement is off", func(t *testing.T) {
		normalized, err := validation.ValidateSourceURL("http://plain.example/catalog.json", false)
		require.NoError(t, err)
		assert.Equal(t, "http://plain.example/catalog.json", normalized)
	})

	t.Run("Https endpoint passes", func(t *testing.T) {
		normalized, err := validation.ValidateSourceURL("https://ok.test/catalog.json", true)
		require.NoError(t, err)
		assert.Equal(t, "https://ok.test/catalog.json", normalized)
	})

	t.Run("Loopback endpoint is rejected", func(t *testing.T) {
		_, err := validation.ValidateSourceURL("https://localhost/catalog.json", true)
		require.Error(t, err)
	})
}
