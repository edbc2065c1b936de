package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"storage-npv/internal/api/models"
	"storage-npv/internal/config"
)

// TechnologyHandler serves storage-technology presets and the documented
// default configuration.
type TechnologyHandler struct {
	dir string
}

// NewTechnologyHandler reads presets from dir (TECHNOLOGY_DIR env or
// examples/technologies by default).
func NewTechnologyHandler(dir string) *TechnologyHandler {
	if dir == "" {
		dir = os.Getenv("TECHNOLOGY_DIR")
	}
	if dir == "" {
		dir = filepath.Join("examples", "technologies")
	}
	return &TechnologyHandler{dir: dir}
}

// ListTechnologies handles GET /api/v1/technologies.
func (h *TechnologyHandler) ListTechnologies(c *gin.Context) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"technologies": []models.TechnologyInfo{}})
		return
	}

	infos := make([]models.TechnologyInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(h.dir, e.Name())
		cfg, err := config.LoadUnchecked(path)
		if err != nil || cfg.Technology.CapacityKWh == 0 {
			continue
		}
		infos = append(infos, models.TechnologyInfo{
			ID:   strings.TrimSuffix(e.Name(), ".yaml"),
			Name: cfg.Technology.Name,
			File: path,
			Specs: models.TechnologySpecs{
				CapacityKWh: cfg.Technology.CapacityKWh,
				Efficiency:  cfg.Technology.Efficiency,
				Thermal:     cfg.Technology.Thermal,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"technologies": infos})
}

// GetDefaults handles GET /api/v1/defaults: the full documented baseline
// configuration, so clients can render an editable parameter form.
func (h *TechnologyHandler) GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, config.Default())
}
