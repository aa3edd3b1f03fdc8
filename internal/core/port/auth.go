package port

import "time"

// TokenPayload is what a console session token carries. APIToken is the
// remote api bearer token the session acts with.
type TokenPayload struct {
	Username  string
	APIToken  string
	ExpiresAt time.Time
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	CreateToken(username string, apiToken string) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
