package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMediaRefs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \t ", nil},
		{"single url", "https://cdn.example.com/a.jpg", []string{"https://cdn.example.com/a.jpg"}},
		{"comma separated", "a.jpg,b.jpg", []string{"a.jpg", "b.jpg"}},
		{"semicolon separated", "a.jpg;b.jpg", []string{"a.jpg", "b.jpg"}},
		{"mixed separators", "a.jpg, b.jpg;\nc.jpg", []string{"a.jpg", "b.jpg", "c.jpg"}},
		{"leading and trailing separators", ",a.jpg, ", []string{"a.jpg"}},
		{"order preserved", "z.jpg a.jpg m.jpg", []string{"z.jpg", "a.jpg", "m.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitMediaRefs(tt.raw))
		})
	}
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("https://example.com/a.mp4"))
	assert.True(t, IsRemoteURL("http://example.com/a.mp4"))
	assert.False(t, IsRemoteURL("./media/a.mp4"))
	assert.False(t, IsRemoteURL("C:\\media\\a.mp4"))
}

func TestFormatHashtags(t *testing.T) {
	assert.Equal(t, "", FormatHashtags(""))
	assert.Equal(t, "#golang #testing", FormatHashtags("#golang,#testing"))
	assert.Equal(t, "#golang #testing", FormatHashtags("golang testing"))
	assert.Equal(t, "#one #two #three", FormatHashtags(" one, #two;three "))
	assert.Equal(t, "", FormatHashtags(", ;"))
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"TRUE", "true", " True ", "YES", "1", "x"} {
		assert.True(t, ParseBool(v), v)
	}
	for _, v := range []string{"", "FALSE", "no", "0", "maybe"} {
		assert.False(t, ParseBool(v), v)
	}
}
