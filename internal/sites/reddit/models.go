package reddit

// listing is the envelope of /user/{name}/submitted and /user/{name}/comments.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string    `json:"kind"` // t3 for links, t1 for comments
	Data thingData `json:"data"`
}

// thingData holds the fields shared by link and comment payloads.
type thingData struct {
	ID        string `json:"id"`
	Subreddit string `json:"subreddit"`

	// links
	Title    string `json:"title"`
	SelfText string `json:"selftext"`
	IsSelf   bool   `json:"is_self"`
	URL      string `json:"url"`

	// comments
	Body   string `json:"body"`
	LinkID string `json:"link_id"`
}
