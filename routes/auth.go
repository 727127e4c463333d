package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventboard/middlewares"
	"eventboard/models"
	"eventboard/utils"
)

// publicUser is the only user shape the API ever returns.
func publicUser(u models.User) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role}
}

// POST /api/register
func (d *deps) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=user admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	user := models.User{Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	if err := d.users.Create(&user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
		d.log.WithError(err).Error("register: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// POST /api/login
func (d *deps) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ValidationErrors(err)})
		return
	}

	// Unknown email and wrong password produce the same response so the
	// endpoint does not leak which emails are registered.
	user, err := d.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}
		d.log.WithError(err).Error("login: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID, d.secret)
	if err != nil {
		d.log.WithError(err).Error("login: token signing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(user)})
}

// GET /api/profile
func (d *deps) profile(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}
