package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetOwnProfile(c.Context(), actorID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Description Update profile fields; omitted fields are left unchanged
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,username=string,email=string,password=string} true "Profile changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewBadRequestError("Invalid request body"))
	}

	user, err := s.userService.UpdateOwnProfile(c.Context(), actorID(c), service.UpdateProfileInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyProfile handles DELETE /api/users/me
// @Summary Delete own account
// @Description Delete the account, its posts, photos, follows and votes
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /users/me [delete]
func (s *Server) DeleteMyProfile(c *fiber.Ctx) error {
	if err := s.userService.DeleteOwnProfile(c.Context(), actorID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// SearchUsers handles GET /api/users/search?q=...
// @Summary Search users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Success 200 {array} models.UserSummary
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 10)

	users, err := s.userService.SearchUsers(c.Context(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return c.JSON(summaries)
}

// GetUserProfile handles GET /api/users/:username
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{user=models.UserSummary,reputation=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":       user.Summary(),
		"reputation": user.Reputation,
	})
}

// GetUserPosts handles GET /api/users/:username/posts
// @Summary List a user's posts
// @Description Private posts are included only for the owner and accepted followers
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultFeedLimit)

	posts, err := s.postService.GetUserPosts(c.Context(), actorID(c), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}
