package models

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsMod    bool   `json:"isMod"`
}

// LoginResponse is the identity plus bearer token returned on login.
type LoginResponse struct {
	User
	Token string `json:"token"`
}

// SignupForm is the body of POST /auth/signup.
type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	UniCard         string `json:"uniCard,omitempty"`
	Course          string `json:"course,omitempty"`
	Contact         string `json:"contact,omitempty"`
}
