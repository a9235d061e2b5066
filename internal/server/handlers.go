package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/retrieve"
	"github.com/poiesic/recallit/storage"
)

// RetrieveParams is the request body for POST /api/retrieve.
type RetrieveParams struct {
	Query string `json:"query" validate:"required"`
	Owner string `json:"owner"`
}

// Validate checks the request parameters.
func (params *RetrieveParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		fields := make(map[string]string)
		for _, e := range errs {
			fields[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return fields
	}
	return nil
}

// PassageResponse is one retrieved passage in the response body.
type PassageResponse struct {
	Owner      string  `json:"owner"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Contents   string  `json:"contents"`
	Similarity float32 `json:"similarity"`
}

// RetrieveResponse is the response body for POST /api/retrieve.
type RetrieveResponse struct {
	RequestID  string            `json:"request_id"`
	Query      string            `json:"query"`
	Owner      string            `json:"owner,omitempty"`
	Strategy   string            `json:"strategy"`
	Passages   []PassageResponse `json:"passages"`
	TotalCount int               `json:"total_count"`
	Timestamp  time.Time         `json:"timestamp"`
}

type retrieveHandler struct {
	retriever *retrieve.Retriever
}

func (h *retrieveHandler) HandleRetrieve(c *fiber.Ctx) error {
	var params RetrieveParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest("invalid JSON request")
	}

	if fields := params.Validate(); len(fields) > 0 {
		return NewValidationError(fields)
	}

	ctx := c.Context()

	var (
		result *core.RetrievalResult
		err    error
	)
	if params.Owner != "" {
		result, err = h.retriever.Retrieve(ctx, params.Query, params.Owner)
	} else {
		result, err = h.retriever.RetrieveBest(ctx, params.Query)
	}
	if err != nil {
		if errors.Is(err, core.ErrEmptyQuery) {
			return ErrBadRequest(err.Error())
		}
		return err
	}

	passages := make([]PassageResponse, len(result.Passages))
	for i, scored := range result.Passages {
		passages[i] = PassageResponse{
			Owner:      scored.Passage.Owner,
			Source:     scored.Passage.Source,
			ChunkIndex: scored.Passage.ChunkIndex,
			Contents:   scored.Passage.Contents,
			Similarity: scored.Similarity,
		}
	}

	return c.JSON(RetrieveResponse{
		RequestID:  uuid.NewString(),
		Query:      result.Query,
		Owner:      result.Owner,
		Strategy:   result.Strategy,
		Passages:   passages,
		TotalCount: result.TotalCount,
		Timestamp:  time.Now().UTC(),
	})
}

type storeHandler struct {
	repository storage.PassageRepository
}

// StatsResponse is the response body for GET /api/stats.
type StatsResponse struct {
	Owners map[string]int `json:"owners"`
	Total  int            `json:"total"`
}

func (h *storeHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.repository.Stats(c.Context())
	if err != nil {
		return err
	}

	total := 0
	for _, count := range stats {
		total += count
	}

	return c.JSON(StatsResponse{
		Owners: stats,
		Total:  total,
	})
}

func (h *storeHandler) HandleReset(c *fiber.Ctx) error {
	if err := h.repository.Reset(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "reset"})
}

type checkHandler struct{}

func (h *checkHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}
