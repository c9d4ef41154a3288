package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yourusername/quiz-api/internal/middleware"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

func init() {
	// Ошибки валидации называют поля так же, как они называются в JSON
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// PageConfig задает размеры страниц списков
type PageConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// handleError отправляет HTTP ответ, соответствующий ошибке сервиса
func handleError(c *gin.Context, component string, err error) {
	if fe, ok := apperrors.AsFieldError(err); ok && errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{fe.Field: fe.Message, "error_type": "validation_error"})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action", "error_type": "forbidden"})
	default:
		log.Printf("[%s] Internal server error: %v", component, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_error"})
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Ensure this value is at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value is at most %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

// fieldPath возвращает путь поля без имени корневой структуры: "answers[0].question_id"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// bindJSON разбирает тело запроса; при ошибке сам отправляет 400 и возвращает false
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp := gin.H{"error_type": "validation_error"}
		for _, fe := range verrs {
			resp[fieldPath(fe)] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, resp)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			typeErr.Field: typeErrorMessage(typeErr),
			"error_type":  "validation_error",
		})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
	return false
}

// typeFieldMessages - сообщения для полей, чье значение не приводится к типу
var typeFieldMessages = map[string]string{
	"quiz_id": "Invalid quiz ID",
}

// typeErrorMessage возвращает сообщение для значения неверного типа.
// typeErr.Field - путь через точку без индексов: "answers.question_id".
func typeErrorMessage(typeErr *json.UnmarshalTypeError) string {
	if msg, ok := typeFieldMessages[typeErr.Field]; ok {
		return msg
	}
	switch typeErr.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	}
	return "Invalid value."
}

// pagination читает page и page_size из query
func pagination(c *gin.Context, cfg PageConfig) (page, pageSize, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.Query("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		pageSize = cfg.MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// currentUserID возвращает ID пользователя из контекста (выставляется RequireAuth)
func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
		return 0, false
	}
	return userID, true
}
