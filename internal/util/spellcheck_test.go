package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpellcheck(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no typos", "a fine review", "a fine review"},
		{"lowercase typo", "teh ending was great", "the ending was great"},
		{"capitalized typo", "Definately a classic", "Definitely a classic"},
		{"all caps typo", "TEH BEST", "THE BEST"},
		{"punctuation preserved", "seperate, but recieve!", "separate, but receive!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Spellcheck(tt.in))
		})
	}
}
