package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/internal/http/handler"
	"basegraph.app/arena/internal/model"
)

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var _ = Describe("CatalogHandler", func() {
	var router *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc := &mockDebateService{
			modelsFn: func() []model.ModelProfileMeta {
				return []model.ModelProfileMeta{{ID: "gpt4.1", Label: "GPT-4.1", Model: "gpt-4.1", Group: "OpenAI"}}
			},
			personasFn: func() []model.PersonaPresetMeta {
				return []model.PersonaPresetMeta{{ID: "neutral_judge", Label: "Neutral judge"}}
			},
		}
		h := handler.NewCatalogHandler(svc)
		router.GET("/models", h.Models)
		router.GET("/personas", h.Personas)
		router.GET("/schema", h.Schema)
	})

	It("lists model profiles without credentials", func() {
		w := get(router, "/models")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("api_key"))

		var resp []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveLen(1))
		Expect(resp[0]).To(HaveKeyWithValue("id", "gpt4.1"))
	})

	It("lists persona presets", func() {
		w := get(router, "/personas")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp[0]).To(HaveKeyWithValue("id", "neutral_judge"))
	})

	It("publishes request and event schemas", func() {
		w := get(router, "/schema")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp map[string]map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp).To(HaveKey("debate_request"))
		Expect(resp).To(HaveKey("human_vs_ai_request"))
		Expect(resp).To(HaveKey("human_vs_ai_judge_request"))
		Expect(resp).To(HaveKey("stream_event"))
		Expect(resp["debate_request"]["properties"]).To(HaveKey("agents"))
		Expect(resp["stream_event"]["properties"]).To(HaveKey("detail"))
	})
})

var _ = Describe("SpectatorHandler", func() {
	It("needs redis", func() {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/debates/:id/events", handler.NewSpectatorHandler(nil).Events)

		w := get(router, "/debates/123/events")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("rejects a malformed debate id", func() {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		DeferCleanup(client.Close)
		router.GET("/debates/:id/events", handler.NewSpectatorHandler(client).Events)

		w := get(router, "/debates/not-an-id/events")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
