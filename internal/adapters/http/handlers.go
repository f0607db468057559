package http

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/usecases"
)

// Longest legal description accepted, in bytes.
const maxDescriptionLength = 64 * 1024

type parseRequest struct {
	Text           *string            `json:"text"`
	ReferencePoint *domain.Coordinate `json:"referencePoint"`
}

type classifyRequest struct {
	Text string `json:"text"`
}

type analysisRequest struct {
	Features json.RawMessage        `json:"features"`
	Params   domain.OperationParams `json:"params"`
}

// ParseDescriptionHandler resolves a legal description into segments and a
// parcel polygon.
func ParseDescriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req parseRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if req.Text == nil {
			return errBadRequest(c, "text is required")
		}
		if len(*req.Text) > maxDescriptionLength {
			return errBadRequest(c, "text too long")
		}

		res := deps.Legal.Parse(c.UserContext(), requestID(c), *req.Text, req.ReferencePoint)

		status := fiber.StatusOK
		if res.ErrorMessage != "" && res.Confidence.Rank() <= domain.ConfidenceLow.Rank() {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(res)
	}
}

// ClassifyDescriptionHandler reports the description type only.
func ClassifyDescriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req classifyRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		if strings.TrimSpace(req.Text) == "" {
			return errBadRequest(c, "text is required")
		}
		if len(req.Text) > maxDescriptionLength {
			return errBadRequest(c, "text too long")
		}

		kind := deps.Legal.Classify(c.UserContext(), req.Text)
		return c.JSON(fiber.Map{"descriptionType": kind})
	}
}

// ListOperationsHandler returns the geometric operation catalog.
func ListOperationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(deps.Analysis.Operations())
	}
}

// RunOperationHandler runs one geometric operation over the posted features.
func RunOperationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op := domain.Operation(strings.ToLower(c.Params("operation")))

		var req analysisRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}
		features, err := domain.DecodeFeatures(req.Features)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Analysis.Check(op, len(features)); err != nil {
			if errors.Is(err, usecases.ErrUnknownOperation) {
				return newError(c, fiber.StatusBadRequest, "unknown_operation", err.Error())
			}
			return errBadRequest(c, err.Error())
		}

		log := LoggerFromCtx(c.UserContext())
		log.Debug("running geometric operation", "operation", op, "features", len(features))

		res := deps.Analysis.Run(c.UserContext(), requestID(c), op, features, req.Params)
		if res.Failed() {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
		}
		return c.JSON(res)
	}
}
