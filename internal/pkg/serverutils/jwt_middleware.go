package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wiki-chatbot-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

var errMissingToken = errors.New("missing token")

// JwtMiddleware rejects requests without a valid bearer token.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, err := identityFromHeader(ctx.Get(fiber.HeaderAuthorization), secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, unauthorizedMessage(err)))
		}
		setIdentity(ctx, identity)
		return ctx.Next()
	}
}

// OptionalJwtMiddleware never rejects. A missing, malformed or expired token
// leaves the request anonymous.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, err := identityFromHeader(ctx.Get(fiber.HeaderAuthorization), secret)
		if err == nil {
			setIdentity(ctx, identity)
		}
		return ctx.Next()
	}
}

// RequireRole must run after JwtMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity := CurrentIdentity(ctx)
		if identity == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		if !strings.EqualFold(identity.Role, role) {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Insufficient role"))
		}
		return ctx.Next()
	}
}

// CurrentIdentity returns nil for anonymous requests.
func CurrentIdentity(ctx *fiber.Ctx) *entity.Identity {
	identity, _ := ctx.Locals(identityKey).(*entity.Identity)
	return identity
}

// GenerateToken signs an HS256 token carrying user_id and role.
func GenerateToken(secret string, userId int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userId,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func setIdentity(ctx *fiber.Ctx, identity *entity.Identity) {
	ctx.Locals(identityKey, identity)
	ctx.Locals("user_id", identity.UserId)
	ctx.Locals("role", identity.Role)
}

func identityFromHeader(header, secret string) (*entity.Identity, error) {
	if header == "" {
		return nil, errMissingToken
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return nil, errors.New("malformed authorization header")
	}
	tokenStr := strings.TrimSpace(header[7:])

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	userId, err := claimInt64(claims["user_id"])
	if err != nil || userId <= 0 {
		return nil, errors.New("invalid user_id claim")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = entity.UserRoleUser
	}
	return &entity.Identity{UserId: userId, Role: role}, nil
}

func claimInt64(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		return int64(id), nil
	case json.Number:
		return id.Int64()
	case string:
		return strconv.ParseInt(id, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported claim type %T", v)
	}
}

func unauthorizedMessage(err error) string {
	if errors.Is(err, errMissingToken) {
		return "Missing token"
	}
	return "Invalid token"
}
