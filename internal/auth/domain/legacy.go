package domain

// LegacyUser is a transient snapshot of an account in the legacy store.
// It is never persisted; reconciliation reads it within a single call.
type LegacyUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Confirmed bool   `json:"confirmed"`
	Active    bool   `json:"active"`
}

// LegacyAuthorization is the legacy store's answer to a successful
// credential check. The access token is treated as an opaque string.
type LegacyAuthorization struct {
	AccessToken string
	ExpiresIn   int
	ExternalID  string
	Roles       []string
}
