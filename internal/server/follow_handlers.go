package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:username/follow
// @Summary Request to follow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Target username"
// @Success 201 {object} object{message=string,follow=models.Follow}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{username}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	follow, err := s.followService.RequestFollow(c.Context(), actorID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Follow request sent",
		"follow":  follow,
	})
}

// UnfollowUser handles DELETE /api/users/:username/follow
// @Summary Unfollow a user or withdraw a pending request
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Target username"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{username}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	removed, err := s.followService.Unfollow(c.Context(), actorID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Unfollowed"
	if removed.Status == models.FollowStatusPending {
		message = "Follow request withdrawn"
	}
	return c.JSON(fiber.Map{"message": message})
}

// GetFollowRequests handles GET /api/users/me/follow-requests
// @Summary List pending incoming follow requests
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Follow
// @Router /users/me/follow-requests [get]
func (s *Server) GetFollowRequests(c *fiber.Ctx) error {
	requests, err := s.followService.GetPendingRequests(c.Context(), actorID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(requests)
}

// AcceptFollowRequest handles POST /api/users/me/follow-requests/:username/accept
// @Summary Accept a pending follow request
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Requester username"
// @Success 200 {object} object{message=string,follow=models.Follow}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me/follow-requests/{username}/accept [post]
func (s *Server) AcceptFollowRequest(c *fiber.Ctx) error {
	follow, err := s.followService.AcceptFollow(c.Context(), actorID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Follow request accepted",
		"follow":  follow,
	})
}

// RejectFollowRequest handles POST /api/users/me/follow-requests/:username/reject
// @Summary Reject a pending follow request
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Requester username"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me/follow-requests/{username}/reject [post]
func (s *Server) RejectFollowRequest(c *fiber.Ctx) error {
	if err := s.followService.RejectFollow(c.Context(), actorID(c), c.Params("username")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follow request rejected"})
}

// RemoveFollower handles DELETE /api/users/me/followers/:username
// @Summary Remove an accepted follower
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Follower username"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me/followers/{username} [delete]
func (s *Server) RemoveFollower(c *fiber.Ctx) error {
	if err := s.followService.RemoveFollower(c.Context(), actorID(c), c.Params("username")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follower removed"})
}

// GetFollowers handles GET /api/users/:username/followers
// @Summary List a user's accepted followers
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.UserSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	followers, err := s.followService.GetFollowers(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(summarize(followers))
}

// GetFollowings handles GET /api/users/:username/followings
// @Summary List the users a user follows
// @Tags follows
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.UserSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/followings [get]
func (s *Server) GetFollowings(c *fiber.Ctx) error {
	followings, err := s.followService.GetFollowings(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(summarize(followings))
}

func summarize(users []models.User) []models.UserSummary {
	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries
}
