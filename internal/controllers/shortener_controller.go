package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortify-be/internal/middleware"
	"shortify-be/internal/models"
	"shortify-be/internal/service"
)

type ShortenerController struct {
	urlService service.URLService
	logger     *slog.Logger
}

func NewShortenerController(urlService service.URLService, logger *slog.Logger) *ShortenerController {
	return &ShortenerController{
		urlService: urlService,
		logger:     logger,
	}
}

func (sc *ShortenerController) requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.StatusResponse{
			Status:  false,
			Message: "User not authenticated",
		})
	}
	return userID, ok
}

// Shorten handles POST /url/shortUrl
func (sc *ShortenerController) Shorten(c *gin.Context) {
	var req models.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := sc.requireUser(c)
	if !ok {
		return
	}

	res, err := sc.urlService.Shorten(c.Request.Context(), req.OriginalURL, userID)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	message := service.MsgShortened
	if res.Existing {
		message = service.MsgAlreadyShortened
	}
	c.JSON(http.StatusOK, models.ShortenResponse{
		Status:   true,
		Message:  message,
		ShortURL: res.Link.ShortCode,
	})
}

// GetAll handles GET /url/getAll?page=&limit=&search=
func (sc *ShortenerController) GetAll(c *gin.Context) {
	var q models.ListURLsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := sc.requireUser(c)
	if !ok {
		return
	}

	page, err := sc.urlService.ListForUser(c.Request.Context(), userID,
		q.PageOr(service.DefaultPage), q.LimitOr(service.DefaultPageSize), q.Search)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	items := make([]models.URLItem, 0, len(page.URLs))
	for _, u := range page.URLs {
		items = append(items, models.NewURLItem(u))
	}

	c.JSON(http.StatusOK, models.ListURLsResponse{
		Status:      true,
		URLs:        items,
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	})
}

// Redirect handles GET /:shortCode with a 302 to the original URL
func (sc *ShortenerController) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	target, err := sc.urlService.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	sc.urlService.RecordVisit(c.Request.Context(), shortCode)
	c.Redirect(http.StatusFound, target)
}
