package domain

// User is a chat-platform identity known to the bot. ID is the platform's
// stable numeric identifier.
type User struct {
	ID          int64
	DisplayName *string
}

// Handle returns the display name, or an empty string when the user has none.
func (u User) Handle() string {
	if u.DisplayName == nil {
		return ""
	}
	return *u.DisplayName
}
