package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskapp/internal/mockapi/helper"
	"taskapp/internal/mockapi/store"
	"taskapp/internal/mockapi/token"
	"taskapp/internal/mockapi/validation"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type AuthHandler struct {
	users  store.UserRepository
	issuer *token.Issuer
}

func NewAuthHandler(users store.UserRepository, issuer *token.Issuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	params, err := bindJSON[credentialsRequest](c)
	if err != nil {
		helper.SendBadRequest(c, "invalid request body")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationErrors(c, validation.FormatValidationErrors(err))
		return
	}

	hash, err := hashPassword(params.Password)
	if err != nil {
		helper.SendInternalError(c, "could not register user")
		return
	}

	user, err := h.users.Create(c.Request.Context(), store.User{
		Email:        params.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			helper.SendValidationErrors(c, map[string][]string{
				"email": {"email is already registered"},
			})
			return
		}
		helper.SendInternalError(c, "could not register user")
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Login handles POST /auth/login. Unknown emails and wrong passwords get
// the same answer.
func (h *AuthHandler) Login(c *gin.Context) {
	params, err := bindJSON[credentialsRequest](c)
	if err != nil {
		helper.SendBadRequest(c, "invalid request body")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationErrors(c, validation.FormatValidationErrors(err))
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), params.Email)
	if err != nil || checkPassword(params.Password, user.PasswordHash) != nil {
		helper.SendUnauthorized(c, "invalid email or password")
		return
	}

	signed, err := h.issuer.Issue(user.ID)
	if err != nil {
		helper.SendInternalError(c, "could not issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed})
}

func hashPassword(password string) (string, error) {
	encrypted, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(encrypted), nil
}

func checkPassword(password, encrypted string) error {
	return bcrypt.CompareHashAndPassword([]byte(encrypted), []byte(password))
}
