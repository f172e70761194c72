package types

// AuthInfo is attached to the request context by the auth middleware.
type AuthInfo struct {
	User    *User
	Token   *Token
	IsAdmin bool
}
