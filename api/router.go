package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed docs/openapi.json
var openAPI []byte

// Handlers groups everything the router mounts.
type Handlers struct {
	Pages         *PageHandler
	Bookings      *BookingHandler
	Payments      *PaymentHandler
	Registrations *RegistrationsHandler
	Countdown     *CountdownHandler
}

func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// OpenAPI returns the JSON description of the /api routes.
func OpenAPI() []byte {
	return openAPI
}

func InitRouter(mode string, h Handlers, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(mode)
	router := gin.New()
	router.Use(mw...)
	router.SetHTMLTemplate(Templates())

	h.Pages.Register(router.Group(""))
	h.Registrations.Register(router.Group(""))
	h.Bookings.Register(router.Group("/api/booking"))
	h.Payments.Register(router.Group("/api/payment"))
	h.Countdown.Register(router.Group("/api/countdown"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPI)
	})

	return router
}
