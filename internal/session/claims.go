package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/protomem/taskdesk/internal/model"
)

// Claims is the identity summary carried by the backend credential.
type Claims struct {
	UserID    model.ID
	Username  string
	Role      model.Role
	ExpiresAt time.Time
}

var _parser = jwt.NewParser()

// DecodeClaims reads the credential payload without verifying its signature.
// The result is only good for display decisions; the backend re-checks every request.
func DecodeClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := _parser.ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("session: decode credential: %w", err)
	}

	var claims Claims

	switch sub := mc["sub"].(type) {
	case float64:
		if sub < 0 {
			return Claims{}, fmt.Errorf("session: negative subject %v", sub)
		}
		claims.UserID = model.ID(sub)
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, fmt.Errorf("session: subject %q: %w", sub, err)
		}
		claims.UserID = model.ID(id)
	default:
		return Claims{}, fmt.Errorf("session: credential has no subject")
	}

	claims.Username, _ = mc["username"].(string)

	if role, _ := mc["role"].(string); model.Role(role).Valid() {
		claims.Role = model.Role(role)
	}

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
