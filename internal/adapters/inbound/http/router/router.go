package router

import (
	"net/http"

	"leadrelay/internal/adapters/inbound/http/controllers"
)

type Dependencies struct {
	HealthController      *controllers.HealthController
	SwaggerController     *controllers.SwaggerController
	LeadWebhookController *controllers.LeadWebhookController
}

func New(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)
	mux.HandleFunc("POST /webhook/lead-created/{dealerId}", deps.LeadWebhookController.IngestLeadCreated)

	return mux
}
