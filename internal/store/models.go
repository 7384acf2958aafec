package store

// Keys written by the portal.
const (
	KeyRememberUser = "remember_user"
)
