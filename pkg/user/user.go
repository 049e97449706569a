package user

// User is the caller as identified by the external identity provider.
// Uid is opaque and only used as the key of the user's allocation list.
type User struct {
	Uid string
}
