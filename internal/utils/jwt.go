package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/models"
)

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey string
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// TokenClaims содержит данные пользователя из проверенного токена
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// GenerateToken создаёт JWT токен со сроком действия 7 дней
func (s *JWTService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"exp":   time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// VerifyToken проверяет JWT токен и возвращает данные пользователя.
// Любой невалидный или просроченный токен — ошибка: вызывающая сторона
// обязана считать такого пользователя неаутентифицированным.
func (s *JWTService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("неожиданный метод подписи токена")
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("невалидный токен")
	}

	rawID, ok := claims["id"].(string)
	if !ok {
		return nil, errors.New("в токене отсутствует id пользователя")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.New("невалидный id пользователя в токене")
	}

	result := &TokenClaims{UserID: userID}
	if email, ok := claims["email"].(string); ok {
		result.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		result.Name = name
	}
	return result, nil
}
