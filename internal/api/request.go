package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/kapu/culturesphere-go/internal/constants"
	apperrors "github.com/kapu/culturesphere-go/pkg/errors"
)

const msgMissingFields = "Missing required fields (userInput, domain)"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type RecommendationRequest struct {
	UserInput string `json:"userInput" validate:"required"`
	Domain    string `json:"domain" validate:"required"`
}

type RecommendationResponse struct {
	Recommendations string `json:"recommendations"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// decodeRecommendationRequest trims both fields before validating, so
// whitespace-only values count as missing.
func decodeRecommendationRequest(r *http.Request) (RecommendationRequest, error) {
	var req RecommendationRequest

	body := http.MaxBytesReader(nil, r.Body, constants.ServerConfig.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return req, apperrors.NewValidationError("failed to read request body", "body", nil).WithCause(err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, apperrors.NewValidationError("malformed JSON body", "body", nil).WithCause(err)
	}

	req.UserInput = strings.TrimSpace(req.UserInput)
	req.Domain = strings.TrimSpace(req.Domain)

	if err := getValidator().Struct(req); err != nil {
		var field string
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return req, apperrors.NewValidationError(fmt.Sprintf("missing field %s", field), field, nil).WithCause(err)
	}

	return req, nil
}
