package server

import (
	"strconv"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Get the personalized feed
// @Description Posts from followed users first, padded with public posts. Anonymous callers get a fixed-size public feed.
// @Tags posts
// @Produce json
// @Param page query int false "Page number (authenticated only)"
// @Param limit query int false "Page size (authenticated only)"
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", service.DefaultFeedLimit)

	posts, err := s.postService.GetFeed(c.Context(), actorID(c), page, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Multipart form with 1-3 photos, a description and coordinates
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photos formData file true "Photos (1-3)"
// @Param description formData string false "Description"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param visibility formData string false "PUBLIC or PRIVATE"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c,
			models.NewBadRequestError("Invalid multipart form"))
	}

	lat, latErr := strconv.ParseFloat(formValue(form.Value, "latitude"), 64)
	lng, lngErr := strconv.ParseFloat(formValue(form.Value, "longitude"), 64)
	if latErr != nil || lngErr != nil {
		return models.RespondWithError(c,
			models.NewBadRequestError("Valid latitude and longitude are required"))
	}

	photos, err := readUploads(form.File["photos"])
	if err != nil {
		return models.RespondWithError(c,
			models.NewBadRequestError("Could not read uploaded photos"))
	}

	post, err := s.postService.CreatePost(c.Context(), actorID(c), service.CreatePostInput{
		Description: formValue(form.Value, "description"),
		Latitude:    lat,
		Longitude:   lng,
		Visibility:  models.Visibility(formValue(form.Value, "visibility")),
		Photos:      photos,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), actorID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Multipart form; omitted fields are left unchanged. Photos may be added and removed in the same request.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param photos formData file false "Photos to add"
// @Param remove_photo_urls formData string false "Photo URLs to remove (repeatable)"
// @Param description formData string false "Description"
// @Param visibility formData string false "PUBLIC or PRIVATE"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c,
			models.NewBadRequestError("Invalid multipart form"))
	}

	in := service.UpdatePostInput{
		RemovePhotoURLs: form.Value["remove_photo_urls"],
	}
	// Field presence decides what changes; an empty description clears it.
	if vals, ok := form.Value["description"]; ok && len(vals) > 0 {
		in.Description = &vals[0]
	}
	if vals, ok := form.Value["visibility"]; ok && len(vals) > 0 {
		vis := models.Visibility(vals[0])
		in.Visibility = &vis
	}

	in.AddPhotos, err = readUploads(form.File["photos"])
	if err != nil {
		return models.RespondWithError(c,
			models.NewBadRequestError("Could not read uploaded photos"))
	}

	post, err := s.postService.UpdatePost(c.Context(), actorID(c), postID, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), actorID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// formValue returns the first value for a multipart form field.
func formValue(values map[string][]string, key string) string {
	if vals, ok := values[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
