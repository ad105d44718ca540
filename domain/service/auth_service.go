package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

type authService struct {
	logger    outbound.Logger
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(logger outbound.Logger, jwtSecret string, jwtExpiryMinutes int) inbound.AuthService {
	return &authService{
		logger:    logger,
		jwtSecret: jwtSecret,
		jwtExpiry: time.Duration(jwtExpiryMinutes) * time.Minute,
	}
}

func (s *authService) GenerateToken(subject string, issuedAt time.Time) (string, error) {
	if subject == "" {
		return "", model.ErrEmptyTokenSubject
	}

	claims := jwt.MapClaims{
		"sub": subject,
		"exp": issuedAt.Add(s.jwtExpiry).Unix(),
		"iat": issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("API token issued", "subject", subject, "expires", issuedAt.Add(s.jwtExpiry))
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*inbound.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, model.ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, model.ErrInvalidToken
	}

	issuedAt, err := token.Claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, model.ErrInvalidToken
	}

	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, model.ErrInvalidToken
	}

	return &inbound.TokenClaims{
		Subject:   subject,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}
