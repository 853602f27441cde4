package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/core/domain"
)

func sampleActivity() domain.UserActivity {
	return domain.UserActivity{
		Username: "u1",
		Posts: []domain.ActivityRecord{
			{Kind: domain.KindPost, ID: "p1", Subreddit: "test", Title: "Hello", Body: "world"},
			{Kind: domain.KindPost, ID: "p2", Subreddit: "pics", Title: "Link post", URLOrParent: "https://i.redd.it/x.png"},
		},
		Comments: []domain.ActivityRecord{
			{Kind: domain.KindComment, ID: "c1", Subreddit: "golang", Body: "first line\n\nsecond line", URLOrParent: "p9"},
		},
	}
}

func TestBuild_EmptyActivity(t *testing.T) {
	got, err := Build(domain.UserActivity{Username: "u1"}, "u1")
	require.ErrorIs(t, err, ErrNoActivity)
	assert.Empty(t, got)
}

func TestBuild_BlankUsername(t *testing.T) {
	_, err := Build(sampleActivity(), " \n")
	require.ErrorIs(t, err, ErrNoUsername)
}

func TestBuild_RendersRecords(t *testing.T) {
	got, err := Build(sampleActivity(), "u1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, Instructions))
	assert.Contains(t, got, "Post ID: p1, Subreddit: test, Title: Hello, Body: world\n")
	assert.Contains(t, got, "Post ID: p2, Subreddit: pics, Title: Link post, Body: N/A\n")
	assert.Contains(t, got, "Comment ID: c1, Subreddit: golang, Body: first line second line\n")
	assert.Contains(t, got, "\nu1\nDEMOGRAPHICS\n")
	for _, name := range domain.SectionOrder {
		assert.Contains(t, got, "\n"+string(name)+"\n")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(sampleActivity(), "u1")
	require.NoError(t, err)
	b, err := Build(sampleActivity(), "u1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_InstructionsIndependentOfData(t *testing.T) {
	other := domain.UserActivity{
		Comments: []domain.ActivityRecord{{Kind: domain.KindComment, ID: "zz", Subreddit: "x", Body: "y"}},
	}
	a, err := Build(sampleActivity(), "u1")
	require.NoError(t, err)
	b, err := Build(other, "someone_else")
	require.NoError(t, err)

	assert.Equal(t, Instructions, a[:len(Instructions)])
	assert.Equal(t, Instructions, b[:len(Instructions)])
	assert.Equal(t, 1, strings.Count(b, outputTemplate))
}

func TestBuild_EmptyBlocksUsePlaceholder(t *testing.T) {
	onlyComments := domain.UserActivity{
		Comments: []domain.ActivityRecord{{Kind: domain.KindComment, ID: "c1", Subreddit: "go"}},
	}
	got, err := Build(onlyComments, "u1")
	require.NoError(t, err)
	assert.Contains(t, got, "Posts:\nN/A\n")
	assert.Contains(t, got, "Comment ID: c1, Subreddit: go, Body: N/A\n")
}

func TestRenderRecord_SingleLine(t *testing.T) {
	r := domain.ActivityRecord{
		Kind:      domain.KindPost,
		ID:        "p1",
		Subreddit: "test",
		Title:     "  multi\r\nline\ttitle ",
		Body:      "   ",
	}
	got := RenderRecord(r)
	assert.Equal(t, "Post ID: p1, Subreddit: test, Title: multi line title, Body: N/A", got)
	assert.NotContains(t, got, "\n")
}
