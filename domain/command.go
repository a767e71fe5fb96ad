package domain

// AppendMessageCommand carries a new message before the store assigns
// its identifier and creation time.
type AppendMessageCommand struct {
	Text   string
	Author Principal
}

// FeedQuery describes a live feed subscription: the last Limit messages
// ordered by creation time.
type FeedQuery struct {
	Limit int
}
