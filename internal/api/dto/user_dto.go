package dto

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// CreateUserRequest is the user provisioning form.
type CreateUserRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Role     string `form:"role"`
	Password string `form:"password"`
}

// UserFormView is the provisioning form as rendered.
type UserFormView struct {
	Username   string
	Email      string
	Role       string
	Strength   string
	Submitting bool
}

// IdentityView describes the signed-in operator in the page header.
type IdentityView struct {
	Role      string
	Email     string
	ExpiresAt string
}

// NavLink is one landing page action.
type NavLink struct {
	Label string
	Href  string
}

// ActivityView is one line of the recent activity list.
type ActivityView struct {
	Label string
	Ago   string
}

// Alert is a one-shot message shown after a redirect.
type Alert struct {
	Kind    string
	Message string
}
