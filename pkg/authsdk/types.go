package authsdk

import "time"

// User is the principal projection returned by the service.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"emailVerified"`
}

// Session is returned by the auth endpoints; Token is only present there,
// verification responses omit it.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthResult is the response of sign-up and sign-in.
type AuthResult struct {
	User    User    `json:"user"`
	Session Session `json:"session"`
}

// VerifyResult is the outcome of a token verification. Valid=false carries
// zero-value User and Session.
type VerifyResult struct {
	Valid   bool    `json:"valid"`
	User    User    `json:"user"`
	Session Session `json:"session"`
}

// ConfigEntry is a non-secret configuration entry.
type ConfigEntry struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ConfigWrite is the body of an administrative config upsert.
type ConfigWrite struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	IsSecret    bool   `json:"isSecret,omitempty"`
}
