//go:build !integration

package use_cases

import (
	"context"
	"testing"

	"leadrelay/internal/application/dto"
)

func TestGetHealthUseCaseReportsOK(t *testing.T) {
	useCase := NewGetHealthUseCase()

	output, appErr := useCase.Execute(context.Background(), dto.GetHealthCommand{})
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if output.Status != "ok" {
		t.Fatalf("expected status ok, got %s", output.Status)
	}
}
