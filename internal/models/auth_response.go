package models

// StatusResponse is the minimal success or failure body
type StatusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// SignUpResponse represents the response after user registration
type SignUpResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

// SignInResponse is returned by password and Google sign-in.
// The refresh token travels in a cookie only.
type SignInResponse struct {
	Status      bool   `json:"status"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
	Email       string `json:"email"`
}

// VerifyEmailResponse also carries the refresh token in the body
type VerifyEmailResponse struct {
	Status       bool   `json:"status"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
}

type RefreshResponse struct {
	Status      bool   `json:"status"`
	AccessToken string `json:"accessToken"`
}
