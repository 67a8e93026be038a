package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shopcore/retail-backend/internal/events"
	"github.com/shopcore/retail-backend/internal/hash"
	"github.com/shopcore/retail-backend/internal/models"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *events.Producer
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func SignAccessToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func SignRefreshToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(7 * 24 * time.Hour).Unix(),
		"typ":  "refresh",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Address     string `json:"address"`
		City        string `json:"city"`
		PostalCode  string `json:"postal_code"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return detail(c, http.StatusBadRequest, "username and password are required")
	}

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return detail(c, http.StatusBadRequest, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		customer := models.Customer{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
			City:        req.City,
			PostalCode:  req.PostalCode,
			UserID:      user.ID,
		}
		return tx.Create(&customer).Error
	})
	if txErr != nil {
		return txErr
	}

	publishEvent(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	accessToken, err := SignAccessToken(user.ID, string(user.Role), h.JWTSecret)
	if err != nil {
		return err
	}
	refreshToken, err := SignRefreshToken(user.ID, string(user.Role), h.RefreshSecret)
	if err != nil {
		return err
	}

	stored := models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		Role:      string(user.Role),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	if err := h.DB.Create(&stored).Error; err != nil {
		return err
	}

	c.SetCookie(CreateCookie("accessToken", accessToken, "/", time.Now().Add(15*time.Minute)))
	c.SetCookie(CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(7*24*time.Hour)))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"role":          user.Role,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return detail(c, http.StatusBadRequest, "missing refresh cookie")
	}

	result := h.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}

	c.SetCookie(CreateCookie("accessToken", "", "/", time.Unix(0, 0)))
	c.SetCookie(CreateCookie("refreshToken", "", "/", time.Unix(0, 0)))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user, resolved from the context set by the
// auth middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("userID").(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return detail(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}
