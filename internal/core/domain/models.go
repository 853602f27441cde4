package domain

// RecordKind distinguishes posts from comments.
type RecordKind string

const (
	KindPost    RecordKind = "post"
	KindComment RecordKind = "comment"
)

// ActivityRecord is one post or comment from a user's public history.
// ID is unique across a user's posts and comments and is the only citation key.
type ActivityRecord struct {
	Kind      RecordKind `json:"kind"`
	ID        string     `json:"id"`
	Subreddit string     `json:"subreddit"`
	Title     string     `json:"title,omitempty"` // posts only
	Body      string     `json:"body,omitempty"`
	// URLOrParent holds the post URL for posts and the parent post id for comments.
	URLOrParent string `json:"url_or_parent,omitempty"`
}

// UserActivity aggregates the recent records of one username, newest first.
type UserActivity struct {
	Username string           `json:"username"`
	Posts    []ActivityRecord `json:"posts"`
	Comments []ActivityRecord `json:"comments"`
}

// IsEmpty reports whether the user has neither posts nor comments.
func (a UserActivity) IsEmpty() bool {
	return len(a.Posts) == 0 && len(a.Comments) == 0
}

// Len returns the combined number of records.
func (a UserActivity) Len() int {
	return len(a.Posts) + len(a.Comments)
}

// IDs returns the set of record ids across posts and comments.
func (a UserActivity) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, a.Len())
	for _, p := range a.Posts {
		ids[p.ID] = struct{}{}
	}
	for _, c := range a.Comments {
		ids[c.ID] = struct{}{}
	}
	return ids
}

// Truncate returns a copy keeping at most limit posts and limit comments.
func (a UserActivity) Truncate(limit int) UserActivity {
	if limit < 0 {
		limit = 0
	}
	out := UserActivity{Username: a.Username}
	out.Posts = append([]ActivityRecord(nil), a.Posts[:min(limit, len(a.Posts))]...)
	out.Comments = append([]ActivityRecord(nil), a.Comments[:min(limit, len(a.Comments))]...)
	return out
}
