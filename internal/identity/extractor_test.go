package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/core/domain"
)

func TestExtractUsername_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"https with www and slash", "https://www.reddit.com/user/kojied/", "kojied"},
		{"http without www", "http://reddit.com/user/Hungry-Move-6603", "Hungry-Move-6603"},
		{"no scheme", "www.reddit.com/user/mrinank67/", "mrinank67"},
		{"bare host", "reddit.com/user/under_score", "under_score"},
		{"query string", "https://www.reddit.com/user/kojied/?utm_source=share", "kojied"},
		{"query without slash", "https://reddit.com/user/kojied?sort=new", "kojied"},
		{"case preserved", "https://www.reddit.com/user/MiXeD_Case/", "MiXeD_Case"},
		{"surrounding whitespace", "  https://www.reddit.com/user/kojied/\n", "kojied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractUsername(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractUsername_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"kojied",
		"https://www.example.com/user/kojied/",
		"https://old.reddit.com/user/kojied/",
		"https://www.reddit.com/u/kojied/",
		"https://www.reddit.com/r/golang/",
		"https://www.reddit.com/user/",
		"https://www.reddit.com/user/kojied/comments/",
		"https://www.reddit.com/user/koj.ied/",
		"https://www.reddit.com/user/koj ied/",
		"https://www.reddit.com/user/kojied/#top",
		"ftp://www.reddit.com/user/kojied/",
		"https://www.reddit.com.evil.com/user/kojied",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := ExtractUsername(input)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, domain.ErrInvalidIdentifier))

			var invalid *domain.InvalidIdentifierError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, input, invalid.Input)
		})
	}
}
