package auth

// Session identifies the signed-in user for one request or connection.
// It is passed explicitly into every core operation instead of being read
// from shared state, so the identity a write runs under is always visible
// at the call site.
type Session struct {
	UserID      string
	DisplayName string
	Email       string
}

// Label is the name other participants should see for this user: the
// display name when set, otherwise the email address.
func (s Session) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}
