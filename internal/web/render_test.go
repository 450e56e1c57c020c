package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownRendersTablesAndStripsScripts(t *testing.T) {
	r := NewRenderer()

	html := string(r.Markdown("| Acronym | Meaning |\n|---|---|\n| SOX | Sarbanes-Oxley |\n\n<script>alert(1)</script>"))

	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "Sarbanes-Oxley")
	assert.NotContains(t, html, "<script")
}

func TestMarkdownKeepsDollarSigns(t *testing.T) {
	r := NewRenderer()
	html := string(r.Markdown("Budget is $5,000 and $3,000"))
	assert.True(t, strings.Contains(html, "$5,000"))
}

func TestAnimalIsStablePerSession(t *testing.T) {
	a := animalFor("session-1", "report.pdf")
	assert.Equal(t, a, animalFor("session-1", "report.pdf"))
	assert.Contains(t, animals, a)
}

func TestAcceptAttr(t *testing.T) {
	assert.Equal(t, ".pdf,.csv", acceptAttr([]string{"pdf", ".csv"}))
}
