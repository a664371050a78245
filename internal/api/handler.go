package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"platochef/internal/analysis"
	"platochef/internal/config"
	"platochef/internal/vision"
)

// MaxImageBytes is the upload size limit.
const MaxImageBytes = 8 * 1024 * 1024

// Analyzer runs the full image-to-analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, imageData []byte, mediaType string) (*analysis.Analysis, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Analyzer Analyzer
}

// NewHandler creates a new Handler.
func NewHandler(analyzer Analyzer) *Handler {
	return &Handler{Analyzer: analyzer}
}

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var mediaTypeByExtension = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Analyze handles image uploads and returns the validated analysis.
func (h *Handler) Analyze(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		log.Printf("Error getting form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo inválido."})
		return
	}

	// Multipart writers commonly tag files application/octet-stream, so the
	// extension decides when the declared type is missing or generic.
	mediaType := file.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mediaTypeByExtension[strings.ToLower(filepath.Ext(file.Filename))]
	}
	if !allowedMediaTypes[mediaType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato no soportado. Usa JPG, PNG o WEBP."})
		return
	}

	if file.Size > MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Archivo demasiado grande. Máximo 8MB."})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("open file err: %s", err.Error())})
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("read image err: %s", err.Error())})
		return
	}

	// Timeout covers the initial model call plus the optional repair call.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	result, err := h.Analyzer.Analyze(ctx, imageData, mediaType)
	if err != nil {
		h.writeAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeAnalyzeError(c *gin.Context, err error) {
	log.Printf("analysis failed: %v", err)

	var providerErr *vision.ProviderError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "El análisis IA excedió el tiempo máximo."})
	case errors.As(err, &providerErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Falló el análisis IA: %s", providerErr.Error())})
	case errors.Is(err, config.ErrMissingCredential):
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Configuración inválida: %s", err.Error())})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Falló el análisis IA: %s", err.Error())})
	}
}

// ScaleIngredients re-validates a posted analysis and returns its ingredient
// list scaled to the requested portion count.
func (h *Handler) ScaleIngredients(c *gin.Context) {
	a, portions, ok := h.analysisFromRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"portions": portions, "ingredients": analysis.ScaledIngredients(a, portions)})
}

// ExportRecipe returns the full recipe as plain text.
func (h *Handler) ExportRecipe(c *gin.Context) {
	a, portions, ok := h.analysisFromRequest(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, analysis.RecipeToText(a, portions))
}

// ExportShoppingList returns the shopping list as plain text.
func (h *Handler) ExportShoppingList(c *gin.Context) {
	a, portions, ok := h.analysisFromRequest(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, analysis.ShoppingListToText(a, portions))
}

// analysisFromRequest decodes the posted analysis, runs it through the same
// validator the pipeline uses, and reads the portions query parameter.
func (h *Handler) analysisFromRequest(c *gin.Context) (*analysis.Analysis, int, bool) {
	portions, err := portionsFromQuery(c.Query("portions"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}

	var value any
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo JSON inválido."})
		return nil, 0, false
	}

	a, err := analysis.Validate(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}

	return a, portions, true
}

func portionsFromQuery(raw string) (int, error) {
	if raw == "" {
		return analysis.ReferencePortions, nil
	}
	portions, err := strconv.Atoi(raw)
	if err != nil || portions < analysis.MinPortions || portions > analysis.MaxPortions {
		return 0, fmt.Errorf("porciones inválidas: deben ser un entero entre %d y %d", analysis.MinPortions, analysis.MaxPortions)
	}
	return portions, nil
}
