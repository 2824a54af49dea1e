package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents an operator registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// login handles operator login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// 1. Find User
	user, err := r.store.Users().ByUsername(req.Context(), loginReq.Username)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 2. Check Password
	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 3. Update Last Login
	now := time.Now()
	user.LastLogin = &now
	_ = r.store.Users().Save(req.Context(), user)

	// 4. Generate Tokens
	accessToken, refreshToken, err := utils.GenerateTokens(user, r.jwtSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": map[string]string{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"user": user,
	})
}

// register handles operator registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if regReq.Username == "" || regReq.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.UserAuth{
		Username: regReq.Username,
		Password: hashedPassword,
		Name:     regReq.Name,
		Role:     "operator",
		IsActive: true,
	}
	if err := r.store.Users().Save(req.Context(), &user); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create user (username might exist)")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&user, r.jwtSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "User created but failed to generate tokens")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"tokens": map[string]string{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"user": user,
	})
}
