package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"shortify-be/internal/middleware"
	"shortify-be/internal/models"
	"shortify-be/internal/service"
)

const qrSize = 256

type QRCodeController struct {
	urlService service.URLService
	baseURL    string
	logger     *slog.Logger
}

func NewQRCodeController(urlService service.URLService, baseURL string, logger *slog.Logger) *QRCodeController {
	return &QRCodeController{
		urlService: urlService,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// GenerateQRCode handles GET /url/qrcode/:shortCode for links the caller owns
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.StatusResponse{Status: false, Message: "User not authenticated"})
		return
	}

	link, err := qc.urlService.GetOwned(c.Request.Context(), c.Param("shortCode"), userID)
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	pngData, err := qrcode.Encode(qc.baseURL+"/"+link.ShortCode, qrcode.Medium, qrSize)
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename="+link.ShortCode+".png")
	c.Data(http.StatusOK, "image/png", pngData)
}
