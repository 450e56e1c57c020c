package filename

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already clean", raw: "key_controls.txt", want: "key_controls.txt"},
		{name: "quoted with spaces", raw: `"Key Controls Summary"`, want: "Key_Controls_Summary"},
		{name: "path traversal", raw: "../../etc/passwd", want: "etc-passwd"},
		{name: "windows illegal chars", raw: `a<b>c:d|e?f*g`, want: "a-b-c-d-e-f-g"},
		{name: "first non-empty line only", raw: "\n\n  audit_summary.md \nbecause it summarises", want: "audit_summary.md"},
		{name: "markdown emphasis", raw: "**Access Review**", want: "Access_Review"},
		{name: "collapses separators", raw: "a  -  b", want: "a_b"},
		{name: "nothing usable", raw: "  /// ", want: ""},
		{name: "hidden file dot stripped", raw: ".env", want: "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	got := Sanitize(strings.Repeat("é", 200))
	assert.Equal(t, MaxLength, utf8.RuneCountInString(got))
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "Key_Controls.txt", WithExtension("Key Controls", "txt"))
	assert.Equal(t, "summary.txt", WithExtension("summary.TXT", ".txt"))
	assert.Equal(t, "summary.pdf.txt", WithExtension("summary.pdf", "txt"))
	assert.Equal(t, "", WithExtension("   ", "txt"))

	long := WithExtension(strings.Repeat("a", 200), "txt")
	assert.Equal(t, MaxLength, len(long))
	assert.True(t, strings.HasSuffix(long, ".txt"))
}

func TestAllowed(t *testing.T) {
	allowed := []string{"pdf", ".csv"}
	assert.True(t, Allowed("report.PDF", allowed))
	assert.True(t, Allowed("data.csv", allowed))
	assert.False(t, Allowed("run.exe", allowed))
	assert.False(t, Allowed("noext", allowed))
}
