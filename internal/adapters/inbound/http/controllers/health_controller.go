package controllers

import (
	"log"
	"net/http"

	"leadrelay/internal/application/dto"
	portsin "leadrelay/internal/application/ports/in"
)

type HealthController struct {
	useCase portsin.GetHealthUseCase
	logger  *log.Logger
}

func NewHealthController(useCase portsin.GetHealthUseCase, logger *log.Logger) *HealthController {
	return &HealthController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *HealthController) GetHealth(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCase.Execute(r.Context(), dto.GetHealthCommand{})
	if appErr != nil {
		c.logger.Printf("request error path=/health method=%s code=%s message=%s", r.Method, appErr.Code, appErr.Message)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
