package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "water-access", "water-access"},
		{"spaces become underscores", "Clean Water Project", "Clean_Water_Project"},
		{"repeated invalid chars collapse", "a!!b??c", "a_b_c"},
		{"leading and trailing stripped", "__project__", "project"},
		{"short names padded", "ab", "ab_collection"},
		{"ipv4 literal disambiguated", "10.0.0.1", "10_0_0_1_ns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.input))
		})
	}
}

func TestSanitizeNameTruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 100)

	got := SanitizeName(long)

	assert.Len(t, got, 63)
}

func TestSanitizeNameTruncationKeepsAlnumEnd(t *testing.T) {
	// Character 63 lands on an underscore; the result must still end
	// alphanumerically.
	input := strings.Repeat("ab ", 40)

	got := SanitizeName(input)

	assert.LessOrEqual(t, len(got), 63)
	assert.NotEqual(t, byte('_'), got[len(got)-1])
}

func TestChunkIDStable(t *testing.T) {
	first := ChunkID("proposal final.pdf", 3)
	second := ChunkID("proposal final.pdf", 3)

	assert.Equal(t, first, second)
	assert.Equal(t, "proposal_final_pdf_3", first)
}

func TestDisplayPath(t *testing.T) {
	p := &Project{Path: "/home/alex/projects/water"}
	assert.Equal(t, "~/projects/water", p.DisplayPath())

	p = &Project{Path: "/srv/projects/water"}
	assert.Equal(t, "/srv/projects/water", p.DisplayPath())
}
