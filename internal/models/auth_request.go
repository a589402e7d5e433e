package models

// SignUpRequest represents the request body for user registration
type SignUpRequest struct {
	FullName        string `json:"fullName" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required,password,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// SignInRequest represents the request body for password sign-in
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailQuery is bound from the verification link query string
type VerifyEmailQuery struct {
	Email string `form:"email" binding:"required,email"`
	Token string `form:"token" binding:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// GoogleSignInRequest carries a Google ID token
type GoogleSignInRequest struct {
	Token string `json:"token" binding:"required"`
}
