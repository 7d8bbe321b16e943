package domain

// NewUserRequest is the payload of a single user-creation submission.
type NewUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

// PasswordStrength is an advisory classification shown next to the password field.
type PasswordStrength string

const (
	PasswordWeak   PasswordStrength = "Weak"
	PasswordMedium PasswordStrength = "Medium"
	PasswordStrong PasswordStrength = "Strong"
)
