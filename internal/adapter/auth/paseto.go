package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/MikeRez0/posadmin/internal/core/port"
)

const (
	DefaultTokenTTL = 12 * time.Hour

	usernameClaim = "username"
	apiTokenClaim = "api_token"
)

// PasetoToken issues v4.local session tokens. The remote api token travels
// encrypted inside them.
type PasetoToken struct {
	parser paseto.Parser
	key    paseto.V4SymmetricKey
	ttl    time.Duration
	now    func() time.Time
}

// New uses hexKey as the symmetric key, or a random one when it is empty.
func New(hexKey string, ttl time.Duration) (port.TokenService, error) {
	key := paseto.NewV4SymmetricKey()
	if hexKey != "" {
		var err error
		key, err = paseto.V4SymmetricKeyFromHex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("error parsing token key: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &PasetoToken{
		parser: paseto.NewParserWithoutExpiryCheck(),
		key:    key,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (p *PasetoToken) CreateToken(username string, apiToken string) (string, error) {
	now := p.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(p.ttl))
	token.SetSubject(username)
	token.SetString(usernameClaim, username)
	token.SetString(apiTokenClaim, apiToken)

	return token.V4Encrypt(p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	expiresAt, err := parsedToken.GetExpiration()
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !p.now().Before(expiresAt) {
		return nil, domain.ErrExpiredToken
	}

	username, err := parsedToken.GetString(usernameClaim)
	if err != nil || username == "" {
		return nil, domain.ErrInvalidToken
	}
	apiToken, err := parsedToken.GetString(apiTokenClaim)
	if err != nil || apiToken == "" {
		return nil, domain.ErrInvalidToken
	}

	return &port.TokenPayload{
		Username:  username,
		APIToken:  apiToken,
		ExpiresAt: expiresAt,
	}, nil
}
