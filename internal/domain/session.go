package domain

// Session is the current (identity, token) pair representing "logged in".
// At most one session is active per running client.
type Session struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}
