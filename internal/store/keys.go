package store

// Reserved vault keys. The session manager is the sole writer of these
// two keys; concurrent writers are out of contract.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)
