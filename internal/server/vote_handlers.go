package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UpvotePost handles POST /api/posts/:id/upvote
// @Summary Upvote a post
// @Description Upvoting a downvoted post flips the vote in one step
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{vote=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/upvote [post]
func (s *Server) UpvotePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.voteService.Upvote(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"vote": result})
}

// DownvotePost handles POST /api/posts/:id/downvote
// @Summary Downvote a post
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{vote=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/downvote [post]
func (s *Server) DownvotePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.voteService.Downvote(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"vote": result})
}

// RemoveVote handles DELETE /api/posts/:id/vote
// @Summary Remove an existing vote
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{vote=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/vote [delete]
func (s *Server) RemoveVote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.voteService.RemoveVote(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"vote": result})
}
