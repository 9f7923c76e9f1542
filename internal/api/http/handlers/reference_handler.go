package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// ReferenceHandler serves statuses, priorities, machines and stock lookups.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

// ListStatuses GET /statuses.
func (h *ReferenceHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.service.Statuses(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StatusResponse, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, dto.NewStatusResponse(s))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateStatus POST /statuses.
func (h *ReferenceHandler) CreateStatus(c *fiber.Ctx) error {
	var req dto.CreateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	status, err := h.service.CreateStatus(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewStatusResponse(*status)})
}

// ListPriorities GET /priorities.
func (h *ReferenceHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.service.Priorities(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PriorityResponse, 0, len(priorities))
	for _, p := range priorities {
		items = append(items, dto.PriorityResponse{ID: p.ID, Name: p.Name, Default: p.Default})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreatePriority POST /priorities.
func (h *ReferenceHandler) CreatePriority(c *fiber.Ctx) error {
	var req dto.CreatePriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	priority, err := h.service.CreatePriority(c.UserContext(), service.PriorityInput{Name: req.Name, Default: req.Default})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.PriorityResponse{
		ID: priority.ID, Name: priority.Name, Default: priority.Default,
	}})
}

// ListMachines GET /machines.
func (h *ReferenceHandler) ListMachines(c *fiber.Ctx) error {
	machines, err := h.service.Machines(c.UserContext(), c.Query("q"),
		parseInt(c.Query("limit"), 20), parseInt(c.Query("offset"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMachineResponses(machines)})
}

// GetMachine GET /machines/:id.
func (h *ReferenceHandler) GetMachine(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	machine, err := h.service.Machine(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMachineResponse(*machine)})
}

// CreateMachine POST /machines.
func (h *ReferenceHandler) CreateMachine(c *fiber.Ctx) error {
	var req dto.CreateMachineRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	machine, err := h.service.CreateMachine(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMachineResponse(*machine)})
}

// Stock GET /products/:reference/stock?warehouse=W1.
func (h *ReferenceHandler) Stock(c *fiber.Ctx) error {
	warehouse := c.Query("warehouse")
	if warehouse == "" {
		return apperrors.NewValidationError("warehouse is required", map[string]any{"field": "warehouse"})
	}
	reference := c.Params("reference")
	if _, err := h.service.Product(c.UserContext(), reference); err != nil {
		return err
	}
	stock, err := h.service.Stock(c.UserContext(), reference, warehouse)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StockResponse{
		Reference:     stock.Reference,
		WarehouseCode: stock.WarehouseCode,
		Quantity:      stock.Quantity,
	}})
}
