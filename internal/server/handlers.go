package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ledgerlift/ledgerlift/internal/common"
	"github.com/ledgerlift/ledgerlift/internal/engine"
	"github.com/ledgerlift/ledgerlift/internal/model"
)

var validate = validator.New()

// MigrationRequestBody is the wire shape of a migration request.
type MigrationRequestBody struct {
	OrganizationID     string                `json:"organizationId" validate:"required"`
	BusinessType       string                `json:"businessType,omitempty"`
	MigrationMode      string                `json:"migrationMode,omitempty" validate:"omitempty,oneof=preview execute"`
	MappingStrategy    string                `json:"mappingStrategy,omitempty" validate:"omitempty,oneof=ai_smart code_based name_based custom"`
	ConflictResolution string                `json:"conflictResolution,omitempty" validate:"omitempty,oneof=skip merge rename fail"`
	CustomMappings     map[string]string     `json:"customMappings,omitempty"`
	PreserveStructure  bool                  `json:"preserveStructure,omitempty"`
	Accounts           []model.LegacyAccount `json:"accounts" validate:"required,min=1,max=500,dive"`
}

// ErrorResponse is the wire shape of an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) createMigration(c echo.Context) error {
	var body MigrationRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if err := validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	req := engine.MigrationRequest{
		OrganizationID:     body.OrganizationID,
		BusinessType:       body.BusinessType,
		Mode:               engine.MigrationMode(body.MigrationMode),
		Strategy:           engine.MappingStrategy(body.MappingStrategy),
		ConflictResolution: engine.ConflictResolution(body.ConflictResolution),
		CustomMappings:     body.CustomMappings,
		PreserveStructure:  body.PreserveStructure,
		Accounts:           body.Accounts,
	}

	result, err := s.engine.Migrate(c.Request().Context(), req)
	if err != nil {
		return s.migrationError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// migrationError maps engine errors onto HTTP status codes.
func (s *Server) migrationError(c echo.Context, err error) error {
	switch {
	case common.IsValidation(err):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrNoCanonicalAccounts):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrConflictAbort):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("migration failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "migration failed"})
	}
}

func (s *Server) listTemplates(c echo.Context) error {
	types, err := s.storage.ListTemplateTypes(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list templates"})
	}
	if types == nil {
		types = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"businessTypes": types})
}

func (s *Server) getTemplate(c echo.Context) error {
	businessType := c.Param("businessType")
	accounts, err := s.storage.GetTemplateAccounts(c.Request().Context(), businessType)
	if err != nil {
		if errors.Is(err, common.ErrTemplateNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("failed to load template", "business_type", businessType, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load template"})
	}
	return c.JSON(http.StatusOK, accounts)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
