package services

import (
	"context"
	"fmt"
	"time"

	"signage_server/internal/apperr"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

const deviceTokenIssuer = "signage-server"

// DeviceClaims identifies a device in its check-in token
type DeviceClaims struct {
	DevicePK uint `json:"did"`
	jwt.RegisteredClaims
}

// DeviceTokenService issues and verifies the tokens devices use to check in
type DeviceTokenService struct {
	store  repository.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDeviceTokenService creates a token service signing with secret (HS256)
func NewDeviceTokenService(store repository.Store, secret string, ttl time.Duration) *DeviceTokenService {
	return &DeviceTokenService{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for device
func (s *DeviceTokenService) Issue(device *models.Device) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("device token secret is not configured")
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &DeviceClaims{
		DevicePK: device.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   device.DeviceID,
			Issuer:    deviceTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns its claims
func (s *DeviceTokenService) Parse(tokenString string) (*DeviceClaims, error) {
	if len(s.secret) == 0 {
		return nil, apperr.Unauthorized("device tokens are disabled")
	}
	claims := &DeviceClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired device token")
	}
	if claims.Issuer != deviceTokenIssuer || claims.Subject == "" {
		return nil, apperr.Unauthorized("invalid device token")
	}
	return claims, nil
}

// Authenticate resolves a token to its device. A token stops working once the device
// is deleted or its device_id no longer matches.
func (s *DeviceTokenService) Authenticate(ctx context.Context, tokenString string) (*models.Device, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	device, err := s.store.Devices().GetByID(ctx, claims.DevicePK)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("device no longer exists")
		}
		return nil, err
	}
	if device.DeviceID != claims.Subject {
		return nil, apperr.Unauthorized("invalid device token")
	}
	if !device.IsActive {
		return nil, apperr.PermissionDenied("device is deactivated")
	}
	return device, nil
}
