package leads

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bd_pipeline_backend/internal/events"
	apphttp "bd_pipeline_backend/internal/http"
	"bd_pipeline_backend/internal/leads/repository/memory"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type pipelineConfig struct {
	stagesFile string
}

func (pipelineConfig) GetPhoneRegion() string              { return "IN" }
func (c pipelineConfig) GetStagesFile() string             { return c.stagesFile }
func (pipelineConfig) GetHandoverSyncDelay() time.Duration { return 0 }

func TestNewModuleRejectsMissingStagesFile(t *testing.T) {
	_, err := NewModule(memory.NewStore(), events.NewInMemoryBus(logger.Nop()), validator.New(), pipelineConfig{stagesFile: "/nonexistent/stages.yaml"}, nil, nil, logger.Nop())
	if err == nil {
		t.Fatal("expected error for missing stage catalog file")
	}
}

func TestModuleRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	module, err := NewModule(memory.NewStore(), events.NewInMemoryBus(logger.Nop()), validator.New(), pipelineConfig{}, nil, nil, logger.Nop())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	module.RegisterRoutes(&apphttp.RouterContext{Public: v1, Protected: v1})

	for _, path := range []string{"/api/v1/leads/stages", "/api/v1/groups"} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}
