package dto

import "time"

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type OAuthCallbackRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state"`
}

func (r OAuthCallbackRequest) Validate() error {
	return validate.Struct(r)
}

// GoogleTokenResponse is the token endpoint's reply during code exchange.
type GoogleTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
}

// GoogleUserInfo is the subset of the userinfo payload we keep.
type GoogleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type LoginResponse struct {
	Token TokenPair    `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	Role      string    `json:"role"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the explicit caller identity threaded through handlers.
// A nil *Identity means an anonymous request.
type Identity struct {
	UserID string
	Role   string
}

// AdminGateDecision is the outcome of the management-route gate. When
// Allowed is false, RedirectTarget carries where the page layer should
// send the caller.
type AdminGateDecision struct {
	Allowed        bool   `json:"allowed"`
	RedirectTarget string `json:"redirect_target,omitempty"`
}
