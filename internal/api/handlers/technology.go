package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"energyhub/internal/api/models"
	"energyhub/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultTechnologyDir = "examples/technologies"

// TechnologyHandler lists technology data files
type TechnologyHandler struct {
	dir string
	log *zap.Logger
}

// ResolveTechnologyDir returns dir, TECHNOLOGY_DIR or the default, made
// absolute when possible.
func ResolveTechnologyDir(dir string) string {
	if dir == "" {
		dir = os.Getenv("TECHNOLOGY_DIR")
	}
	if dir == "" {
		dir = defaultTechnologyDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir
}

func NewTechnologyHandler(dir string, log *zap.Logger) *TechnologyHandler {
	if log == nil {
		log = zap.NewNop()
	}
	dir = ResolveTechnologyDir(dir)
	log.Info("using technology directory", zap.String("dir", dir))
	return &TechnologyHandler{dir: dir, log: log}
}

func (h *TechnologyHandler) Dir() string { return h.dir }

// ListTechnologies handles GET /api/v1/technologies
func (h *TechnologyHandler) ListTechnologies(c *gin.Context) {
	technologies := []models.TechnologyInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.log.Warn("read technology directory", zap.String("dir", h.dir), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"technologies": technologies})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		info, err := loadTechnologyInfo(path, entry.Name())
		if err != nil {
			h.log.Warn("skipping technology file", zap.String("file", path), zap.Error(err))
			continue
		}
		technologies = append(technologies, *info)
	}

	c.JSON(http.StatusOK, gin.H{"technologies": technologies})
}

// Path returns the data file for id inside the technology directory.
func (h *TechnologyHandler) Path(id string) (string, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", false
	}
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(h.dir, id+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func loadTechnologyInfo(path, filename string) (*models.TechnologyInfo, error) {
	tec, err := config.LoadTechnologyFile(path)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := tec.Name
	if name == "" {
		name = id
	}
	info := &models.TechnologyInfo{
		ID:      id,
		Name:    name,
		TecType: tec.TecType,
		File:    path,
		SizeMax: tec.SizeMax,
	}
	if len(tec.Performance.InputCarrier) == 1 {
		info.Carrier = tec.Performance.InputCarrier[0]
	}
	return info, nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
