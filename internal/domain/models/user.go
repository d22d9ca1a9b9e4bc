package models

// UserCredential is one entry of the credential blob kept in the secret
// store. Password holds the bcrypt hash, never the plaintext.
type UserCredential struct {
	Password  string `json:"password"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CredentialSet is the full credential blob, keyed by username. The whole
// set is read and written as a single secret version.
type CredentialSet map[string]UserCredential
