package slack

// Profile holds the display-relevant fields of a member profile.
type Profile struct {
	RealName              string `json:"real_name"`
	RealNameNormalized    string `json:"real_name_normalized"`
	DisplayName           string `json:"display_name"`
	DisplayNameNormalized string `json:"display_name_normalized"`
}

// Member represents a workspace user as returned by users.list.
type Member struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Deleted bool    `json:"deleted"`
	IsBot   bool    `json:"is_bot"`
	Profile Profile `json:"profile"`
}

// Reaction is a single emoji reaction and the users who added it.
type Reaction struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Message is a channel or thread message. User is empty for some
// subtypes (bot posts, join/leave entries).
type Message struct {
	Type      string     `json:"type"`
	Subtype   string     `json:"subtype"`
	User      string     `json:"user"`
	Text      string     `json:"text"`
	TS        string     `json:"ts"`
	ThreadTS  string     `json:"thread_ts"`
	Reactions []Reaction `json:"reactions"`
}

// Channel identifies a conversation, e.g. the DM opened by conversations.open.
type Channel struct {
	ID string `json:"id"`
}

// responseMetadata carries the pagination cursor for cursor-paged methods.
type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}
