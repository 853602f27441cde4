// Package prompt renders user activity into the persona generation request.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"persona-agent/internal/core/domain"
)

// ErrNoActivity means there is nothing to analyse; callers emit an empty persona.
var ErrNoActivity = errors.New("no activity to build a prompt from")

var ErrNoUsername = errors.New("prompt needs a username")

// Placeholder stands in for absent titles and bodies.
const Placeholder = "N/A"

// Instructions is embedded verbatim in every prompt.
const Instructions = `Analyze the following Reddit data to create a user persona. Use the following structure:
- DEMOGRAPHICS: Age, Occupation, Location, Tier Archetype
- BEHAVIOUR & HABITS: Daily routines or habits
- FRUSTRATIONS: Challenges or pain points
- MOTIVATIONS: Key drivers (e.g., convenience, wellness)
- PERSONALITY: Traits (e.g., Introvert/Extrovert, Sensing/Intuition)
- GOALS & NEEDS: Aspirations or requirements
Append a citation [Source: <post or comment ID>] to every bullet where it can be determined. Cite only IDs listed in the data, one ID per bullet.
Write the section headers exactly as shown and in this order. Every bullet must stay on a single line: never put a line break inside a bullet.`

// outputTemplate follows the username line of the requested output.
const outputTemplate = `DEMOGRAPHICS
- Age: [value] [Source: <ID>]
- Occupation: [value] [Source: <ID>]
- Location: [value] [Source: <ID>]
- Tier Archetype: [value] [Source: <ID>]

BEHAVIOUR & HABITS
- [Description] [Source: <ID>]

FRUSTRATIONS
- [Description] [Source: <ID>]

MOTIVATIONS
- [Category]: [Value] [Source: <ID>]

PERSONALITY
- [Trait]: [Value] [Source: <ID>]

GOALS & NEEDS
- [Description] [Source: <ID>]`

// Build renders the prompt for username. Output is deterministic for equal input.
func Build(activity domain.UserActivity, username string) (string, error) {
	if oneLine(username) == "" {
		return "", ErrNoUsername
	}
	if activity.IsEmpty() {
		return "", ErrNoActivity
	}

	var sb strings.Builder
	sb.WriteString(Instructions)
	fmt.Fprintf(&sb, "\n\nUser: %s\n\nData:\nPosts:\n", oneLine(username))
	writeRecords(&sb, activity.Posts)
	sb.WriteString("\nComments:\n")
	writeRecords(&sb, activity.Comments)
	sb.WriteString("\nReturn the persona as plain text in exactly this format, starting with the username on its own line:\n")
	sb.WriteString(oneLine(username))
	sb.WriteString("\n")
	sb.WriteString(outputTemplate)
	sb.WriteString("\n")
	return sb.String(), nil
}

func writeRecords(sb *strings.Builder, records []domain.ActivityRecord) {
	if len(records) == 0 {
		sb.WriteString(Placeholder)
		sb.WriteString("\n")
		return
	}
	for _, r := range records {
		sb.WriteString(RenderRecord(r))
		sb.WriteString("\n")
	}
}

// RenderRecord formats one record as a single prompt line.
func RenderRecord(r domain.ActivityRecord) string {
	if r.Kind == domain.KindComment {
		return fmt.Sprintf("Comment ID: %s, Subreddit: %s, Body: %s",
			field(r.ID), field(r.Subreddit), field(r.Body))
	}
	return fmt.Sprintf("Post ID: %s, Subreddit: %s, Title: %s, Body: %s",
		field(r.ID), field(r.Subreddit), field(r.Title), field(r.Body))
}

func field(s string) string {
	if s = oneLine(s); s == "" {
		return Placeholder
	}
	return s
}

// oneLine collapses every run of whitespace, line breaks included, to one space.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
