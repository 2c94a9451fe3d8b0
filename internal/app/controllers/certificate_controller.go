package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/services"
	"github.com/RUFFNER25/sistema-de-certificados/internal/middleware"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/helpers"
)

// CertificateController handles certificate endpoints
type CertificateController struct {
	certificateService services.CertificateService
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certificateService services.CertificateService) *CertificateController {
	return &CertificateController{certificateService: certificateService}
}

// Create handles POST /api/certificados. Expects a multipart form with the
// certificate fields and a single PDF under "archivo". Responds 201 with the
// created record.
func (c *CertificateController) Create(ctx *gin.Context) {
	var req dto.CreateCertificateRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid form data")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	file, err := ctx.FormFile("archivo")
	if err != nil {
		file = nil
	}
	if file != nil && file.Header.Get("Content-Type") != "application/pdf" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "only PDF files are accepted").WithField("archivo")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	cert, err := c.certificateService.Create(ctx, req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCertificateResponse(cert, c.certificateService.FileURL(cert.FileRef)))
}

// List handles GET /api/certificados. Public; the unfiltered unauthenticated
// listing is capped to the most recent records, any search parameter or a
// valid token returns every match.
func (c *CertificateController) List(ctx *gin.Context) {
	filter := dto.SearchFilter{
		Query: strings.TrimSpace(ctx.Query("q")),
		Type:  ctx.Query("tipo"),
	}

	if raw := ctx.Query("fecha_desde"); raw != "" {
		parsed, err := helpers.ParseDate(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "fecha_desde must be a valid date (YYYY-MM-DD)").WithField("fecha_desde")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.DateFrom = &parsed
	}
	if raw := ctx.Query("fecha_hasta"); raw != "" {
		parsed, err := helpers.ParseDate(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "fecha_hasta must be a valid date (YYYY-MM-DD)").WithField("fecha_hasta")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.DateUntil = &parsed
	}

	// A filtered search must be able to reach records older than the cap,
	// otherwise a certificate buried under newer matches could never be
	// verified.
	if !middleware.IsAuthenticated(ctx) && !filter.HasCriteria() {
		filter.Limit = services.PublicSearchLimit
	}

	certificates, err := c.certificateService.Search(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]*dto.CertificateResponse, 0, len(certificates))
	for _, cert := range certificates {
		responses = append(responses, dto.ToCertificateResponse(cert, c.certificateService.FileURL(cert.FileRef)))
	}

	ctx.JSON(http.StatusOK, responses)
}

// Update handles PUT /api/certificados/:id with a JSON body. The stored
// file cannot be replaced through this endpoint.
func (c *CertificateController) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid certificate id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.UpdateCertificateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request body")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	cert, err := c.certificateService.Update(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCertificateResponse(cert, c.certificateService.FileURL(cert.FileRef)))
}

// Delete handles DELETE /api/certificados/:id. The backing file is removed
// asynchronously after the record deletion is confirmed.
func (c *CertificateController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid certificate id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.certificateService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
