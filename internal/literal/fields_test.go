package literal

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBool(t *testing.T) {
	t.Run("it rewrites only the value of an existing flag", func(t *testing.T) {
		body, err := SetBool(acmeBody, "isHidden", true)
		require.NoError(t, err)
		assert.Equal(t, strings.Replace(acmeBody, "isHidden: false,", "isHidden: true,", 1), body)
	})

	t.Run("it matches quoted keys", func(t *testing.T) {
		body, err := SetBool(bayBody, "isHidden", true)
		require.NoError(t, err)
		assert.Equal(t, strings.Replace(bayBody, `"isHidden": false`, `"isHidden": true`, 1), body)
	})

	t.Run("it ignores commented out fields", func(t *testing.T) {
		span, err := Locate(fixtureDoc, DefaultMarker, "coastal-roofs")
		require.NoError(t, err)

		coastal := span.Body(fixtureDoc)
		body, err := SetBool(coastal, "isHidden", false)
		require.NoError(t, err)
		assert.Contains(t, body, "/* isHidden: false, */\n    isHidden: false,\n")
	})

	t.Run("it inserts a missing flag after the isHidden anchor", func(t *testing.T) {
		body, err := SetBool(bayBody, "isPreferred", true)
		require.NoError(t, err)
		assert.Equal(t, `
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" Co { and } [sons]",
    "isHidden": false,
    "isPreferred": true
  `, body)
	})

	t.Run("it appends a missing flag when there is no anchor", func(t *testing.T) {
		body, err := SetBool("\n    id: 'x',\n    name: 'y'\n  ", "isPreferred", true)
		require.NoError(t, err)
		assert.Equal(t, "\n    id: 'x',\n    name: 'y',\n    isPreferred: true\n  ", body)
	})

	t.Run("it keeps a trailing comma when appending", func(t *testing.T) {
		body, err := SetBool("\n  id: 'x',\n", "isHidden", true)
		require.NoError(t, err)
		assert.Equal(t, "\n  id: 'x',\n  isHidden: true,\n", body)
	})

	t.Run("it refuses to overwrite a non boolean value", func(t *testing.T) {
		_, err := SetBool(acmeBody, "name", true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformed))
	})
}

func TestSetString(t *testing.T) {
	t.Run("it inserts a new field on its own line after isHidden", func(t *testing.T) {
		body, err := SetString(acmeBody, "category", "preferred")
		require.NoError(t, err)
		assert.Equal(t, strings.Replace(
			acmeBody,
			"    isHidden: false,\n",
			"    isHidden: false,\n    category: \"preferred\",\n",
			1,
		), body)
	})

	t.Run("it comma terminates the anchor when it was the last field", func(t *testing.T) {
		body, err := SetString(bayBody, "googleBusinessUrl", "https://g.page/bay")
		require.NoError(t, err)
		assert.Equal(t, `
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" Co { and } [sons]",
    "isHidden": false,
    "googleBusinessUrl": "https://g.page/bay"
  `, body)
	})

	t.Run("a trailing comment stays on the anchor line", func(t *testing.T) {
		body, err := SetString("\n    id: 'x',\n    isHidden: false, // note\n    name: 'y',\n  ", "category", "preferred")
		require.NoError(t, err)
		assert.Equal(t, "\n    id: 'x',\n    isHidden: false, // note\n    category: \"preferred\",\n    name: 'y',\n  ", body)

		body, err = SetString("\n    id: 'x',\n    isHidden: false // note\n  ", "category", "preferred")
		require.NoError(t, err)
		assert.Equal(t, "\n    id: 'x',\n    isHidden: false, // note\n    category: \"preferred\"\n  ", body)
	})

	t.Run("it keeps crlf line endings", func(t *testing.T) {
		crlf := strings.ReplaceAll(acmeBody, "\n", "\r\n")
		body, err := SetString(crlf, "category", "preferred")
		require.NoError(t, err)
		assert.Equal(t, strings.Replace(
			crlf,
			"    isHidden: false,\r\n",
			"    isHidden: false,\r\n    category: \"preferred\",\r\n",
			1,
		), body)

		body, err = SetString("\r\n    isHidden: false // note\r\n  ", "category", "preferred")
		require.NoError(t, err)
		assert.Equal(t, "\r\n    isHidden: false, // note\r\n    category: \"preferred\"\r\n  ", body)
	})

	t.Run("it replaces a single quoted value with a double quoted one", func(t *testing.T) {
		body, err := SetString(acmeBody, "phone", "(813) 555-0199")
		require.NoError(t, err)
		assert.Equal(t, strings.Replace(acmeBody, `phone: '(813) 555-0100',`, `phone: "(813) 555-0199",`, 1), body)
	})

	t.Run("it replaces a value holding escaped quotes", func(t *testing.T) {
		body, err := SetString(bayBody, "name", `Bay "Shingle" & Sons`)
		require.NoError(t, err)
		assert.Equal(t, `
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" & Sons",
    "isHidden": false
  `, body)
	})

	t.Run("it fills a null value", func(t *testing.T) {
		body, err := SetString("\n    email: null,\n    isHidden: false,\n  ", "email", "hi@example.com")
		require.NoError(t, err)
		assert.Equal(t, "\n    email: \"hi@example.com\",\n    isHidden: false,\n  ", body)
	})

	t.Run("setting the same value twice does not duplicate the field", func(t *testing.T) {
		once, err := SetString(acmeBody, "websiteUrl", "https://acme.example")
		require.NoError(t, err)
		twice, err := SetString(once, "websiteUrl", "https://acme.example")
		require.NoError(t, err)
		assert.Equal(t, once, twice)
		assert.Equal(t, 1, strings.Count(twice, "websiteUrl"))
	})

	t.Run("it refuses to overwrite a non string value", func(t *testing.T) {
		_, err := SetString(acmeBody, "isPreferred", "yes")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformed))
	})
}

func TestSetGroups(t *testing.T) {
	areas := []Bucket{
		{Name: "regions", Tags: []string{"tampa-bay", "central-florida"}},
		{Name: "counties", Tags: nil},
		{Name: "cities", Tags: []string{"tampa"}},
	}

	t.Run("it rewrites an existing block and keeps empty buckets", func(t *testing.T) {
		body, err := SetGroups(acmeBody, "serviceAreas", areas)
		require.NoError(t, err)
		assert.Equal(t, `
    id: 'acme-roofing',
    name: 'Acme Roofing',
    phone: '(813) 555-0100',
    isPreferred: true,
    isHidden: false,
    serviceAreas: {
      regions: ['tampa-bay', 'central-florida'],
      counties: [],
      cities: ['tampa']
    },
  `, body)
	})

	t.Run("it inserts a block using quoted keys next to quoted keys", func(t *testing.T) {
		body, err := SetGroups(bayBody, "serviceAreas", []Bucket{
			{Name: "regions", Tags: []string{"tampa-bay"}},
			{Name: "counties"},
			{Name: "cities"},
		})
		require.NoError(t, err)
		assert.Equal(t, `
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" Co { and } [sons]",
    "isHidden": false,
    "serviceAreas": {
      "regions": ["tampa-bay"],
      "counties": [],
      "cities": []
    }
  `, body)
	})

	t.Run("it writes the block with the record's line endings", func(t *testing.T) {
		crlf := strings.ReplaceAll(bayBody, "\n", "\r\n")
		body, err := SetGroups(crlf, "serviceAreas", []Bucket{
			{Name: "regions", Tags: []string{"tampa-bay"}},
			{Name: "cities"},
		})
		require.NoError(t, err)
		assert.Equal(t, strings.ReplaceAll(`
    "id": "bay-shingle-co",
    "name": "Bay \"Shingle\" Co { and } [sons]",
    "isHidden": false,
    "serviceAreas": {
      "regions": ["tampa-bay"],
      "cities": []
    }
  `, "\n", "\r\n"), body)
		assert.NotContains(t, strings.ReplaceAll(body, "\r\n", ""), "\n")
	})

	t.Run("it escapes tags", func(t *testing.T) {
		body, err := SetGroups(acmeBody, "serviceAreas", []Bucket{{Name: "cities", Tags: []string{"port st. lucie's"}}})
		require.NoError(t, err)
		assert.Contains(t, body, `cities: ['port st. lucie\'s']`)
	})

	t.Run("it refuses to overwrite a scalar", func(t *testing.T) {
		_, err := SetGroups(acmeBody, "name", areas)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformed))
	})
}
