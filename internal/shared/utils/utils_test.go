package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ServiceNow", "ServiceNow"},
		{"  Home   grown  ", "Home grown"},
		{"<script>alert(1)</script>Foo", "Foo"},
		{"<b>Bold</b> Tool", "Bold Tool"},
		{"R&D Portal", "R&D Portal"},
		{"<img src=x onerror=alert(1)>", ""},
		{"&lt;img src=x onerror=alert(1)&gt;", ""},
		{"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Foo", "Foo"},
		{"&#60;b&#62;Bold&#60;/b&#62; Tool", "Bold Tool"},
		{"R&amp;D Portal", "R&D Portal"},
		{"a < b", "a b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), tt.in)
	}
}

func TestSanitizeTextNeverEmitsMarkup(t *testing.T) {
	for _, in := range []string{
		"&lt;svg onload=alert(1)&gt;",
		"&amp;amp;amp;amp;lt;b&amp;amp;amp;amp;gt;x",
		"&lt;<b>i</b>mg src=x&gt;",
		"<<script>script>alert(1)<</script>/script>",
	} {
		out := SanitizeText(in)
		assert.NotContains(t, out, "<", in)
		assert.NotContains(t, out, ">", in)
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("id\n1\n"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashBytes([]byte("id\n1\n")))
	assert.NotEqual(t, a, HashBytes([]byte("id\n2\n")))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("asmt_01HZX", "id", true))
	assert.NoError(t, ValidateID("", "id", false))
	assert.Error(t, ValidateID("", "id", true))
	assert.Error(t, ValidateID("a/b", "id", true))
	assert.Error(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "id", true))
}

func TestValidateToolName(t *testing.T) {
	assert.NoError(t, ValidateToolName("Foo"))
	assert.NoError(t, ValidateToolName(""))
	assert.Error(t, ValidateToolName(strings.Repeat("x", MaxToolNameLength+1)))
	assert.Error(t, ValidateToolName("a\x00b"))
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("tickets.csv"))
	assert.Error(t, ValidateFilename("a\nb.csv"))
	assert.Error(t, ValidateFilename(strings.Repeat("x", MaxFilenameLength+1)))
}
