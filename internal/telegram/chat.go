package telegram

// Chat is a student chat that talked to the bot. Section is remembered from
// /start so later commands can omit it.
type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Section   string `json:"section"`
}
