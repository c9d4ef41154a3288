package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/internal/websocket"
)

// InvalidationChannel - канал Pub/Sub для синхронизации инвалидаций между инстансами
const InvalidationChannel = "jwt_invalidation_events"

const issuer = "quiz-api"

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// JWTService выдает и проверяет токены доступа
type JWTService struct {
	secret        []byte
	expirationHrs int
	// Черный список пользователей (in-memory): токены, выданные не позже этого времени, недействительны
	invalidatedUsers map[uint]time.Time
	mu               sync.RWMutex
	invalidTokenRepo repository.InvalidTokenRepository
	cleanupInterval  time.Duration
	pubSubProvider   websocket.PubSubProvider
	appCtx           context.Context
	now              func() time.Time
}

// NewJWTService создает сервис, загружает инвалидации из БД и запускает фоновые горутины,
// которые живут до отмены appCtx.
func NewJWTService(
	secret string,
	expirationHrs int,
	invalidTokenRepo repository.InvalidTokenRepository,
	cleanupInterval time.Duration,
	pubSubProvider websocket.PubSubProvider,
	appCtx context.Context,
) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	if invalidTokenRepo == nil {
		return nil, fmt.Errorf("InvalidTokenRepository is required for JWTService")
	}
	if pubSubProvider == nil {
		return nil, fmt.Errorf("PubSubProvider is required for JWTService")
	}
	if appCtx == nil {
		return nil, fmt.Errorf("appCtx is required for JWTService")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}

	service := &JWTService{
		secret:           []byte(secret),
		expirationHrs:    expirationHrs,
		invalidatedUsers: make(map[uint]time.Time),
		invalidTokenRepo: invalidTokenRepo,
		cleanupInterval:  cleanupInterval,
		pubSubProvider:   pubSubProvider,
		appCtx:           appCtx,
		now:              time.Now,
	}

	startupCtx, cancel := context.WithTimeout(appCtx, 15*time.Second)
	defer cancel()
	service.loadInvalidatedTokensFromDB(startupCtx)

	go service.runCleanupRoutine()
	go service.listenForInvalidationEvents()

	return service, nil
}

func (s *JWTService) loadInvalidatedTokensFromDB(ctx context.Context) {
	tokens, err := s.invalidTokenRepo.GetAllInvalidTokens(ctx)
	if err != nil {
		log.Printf("[JWT] Ошибка загрузки инвалидированных токенов из БД: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range tokens {
		s.invalidatedUsers[token.UserID] = token.InvalidationTime
	}
	log.Printf("[JWT] Загружено %d записей инвалидации из БД", len(tokens))
}

// GenerateToken создает токен доступа для пользователя
func (s *JWTService) GenerateToken(user *entity.User) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(time.Hour * time.Duration(s.expirationHrs))

	claims := &JWTCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[JWT] Ошибка генерации токена для пользователя ID=%d: %v", user.ID, err)
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken проверяет подпись, срок действия и инвалидацию токена
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, apperrors.ErrExpiredToken
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, fmt.Errorf("%w: token is malformed", apperrors.ErrUnauthorized)
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				log.Printf("[JWT] Неверная подпись токена для пользователя ID=%d", claims.UserID)
				return nil, fmt.Errorf("%w: signature is invalid", apperrors.ErrUnauthorized)
			}
		}
		return nil, fmt.Errorf("%w: token validation failed: %v", apperrors.ErrUnauthorized, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}

	if s.isInvalidated(claims) {
		log.Printf("[JWT] Токен пользователя ID=%d инвалидирован (выдан %v)", claims.UserID, claims.IssuedAt.Time)
		return nil, fmt.Errorf("%w: token has been invalidated", apperrors.ErrUnauthorized)
	}
	return claims, nil
}

func (s *JWTService) isInvalidated(claims *JWTCustomClaims) bool {
	s.mu.RLock()
	invTime, exists := s.invalidatedUsers[claims.UserID]
	s.mu.RUnlock()
	if !exists {
		return false
	}
	if claims.IssuedAt == nil {
		return true
	}
	inv := entity.InvalidToken{UserID: claims.UserID, InvalidationTime: invTime}
	return inv.Revokes(claims.IssuedAt.Time)
}

// InvalidateTokensForUser делает недействительными все ранее выданные токены пользователя
func (s *JWTService) InvalidateTokensForUser(ctx context.Context, userID uint) error {
	now := s.now()

	s.mu.Lock()
	s.invalidatedUsers[userID] = now
	s.mu.Unlock()

	if err := s.invalidTokenRepo.AddInvalidToken(ctx, userID, now); err != nil {
		log.Printf("[JWT] Ошибка записи инвалидации в БД для пользователя ID=%d: %v", userID, err)
		return err
	}

	event, err := json.Marshal(map[string]interface{}{"user_id": userID, "invalidation_time": now.UnixNano()})
	if err != nil {
		log.Printf("[JWT] Ошибка сериализации события инвалидации для userID %d: %v", userID, err)
		return nil
	}
	if err := s.pubSubProvider.Publish(InvalidationChannel, event); err != nil {
		log.Printf("[JWT] Ошибка публикации события инвалидации для userID %d: %v", userID, err)
	}

	log.Printf("[JWT] Токены инвалидированы для пользователя ID=%d в %v", userID, now)
	return nil
}

// CleanupInvalidatedUsers удаляет записи старше двух сроков жизни токена из БД и кеша
func (s *JWTService) CleanupInvalidatedUsers(ctx context.Context) error {
	cutoffTime := s.now().Add(-time.Hour * time.Duration(s.expirationHrs*2))

	dbErr := s.invalidTokenRepo.CleanupOldInvalidTokens(ctx, cutoffTime)
	if dbErr != nil {
		log.Printf("[JWT] Ошибка очистки инвалидированных токенов в БД: %v", dbErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cleaned := 0
	for userID, invalidationTime := range s.invalidatedUsers {
		if invalidationTime.Before(cutoffTime) {
			delete(s.invalidatedUsers, userID)
			cleaned++
		}
	}
	if cleaned > 0 {
		log.Printf("[JWT] Удалено %d устаревших записей из кеша инвалидации", cleaned)
	}
	return dbErr
}

func (s *JWTService) runCleanupRoutine() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(s.appCtx, s.cleanupInterval/2)
			_ = s.CleanupInvalidatedUsers(cleanupCtx)
			cancel()
		case <-s.appCtx.Done():
			log.Printf("[JWT] Фоновая очистка остановлена")
			return
		}
	}
}

// listenForInvalidationEvents применяет инвалидации, сделанные другими инстансами
func (s *JWTService) listenForInvalidationEvents() {
	messages, err := s.pubSubProvider.Subscribe(s.appCtx, InvalidationChannel)
	if err != nil {
		log.Printf("[JWT] Ошибка подписки на канал %s: %v", InvalidationChannel, err)
		return
	}

	for {
		select {
		case <-s.appCtx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event struct {
				UserID           uint  `json:"user_id"`
				InvalidationTime int64 `json:"invalidation_time"`
			}
			if err := json.Unmarshal(msg, &event); err != nil || event.UserID == 0 {
				log.Printf("[JWT] Некорректное событие инвалидации: %s", string(msg))
				continue
			}
			invalidationTime := time.Unix(0, event.InvalidationTime)

			s.mu.Lock()
			if current, ok := s.invalidatedUsers[event.UserID]; !ok || invalidationTime.After(current) {
				s.invalidatedUsers[event.UserID] = invalidationTime
			}
			s.mu.Unlock()
		}
	}
}
