package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
)

// WorkEntriesHandler serves work entries outside their ticket.
type WorkEntriesHandler struct {
	service *service.WorkEntryService
}

// NewWorkEntriesHandler constructs handler.
func NewWorkEntriesHandler(workService *service.WorkEntryService) *WorkEntriesHandler {
	return &WorkEntriesHandler{service: workService}
}

// List GET /work-entries.
func (h *WorkEntriesHandler) List(c *fiber.Ctx) error {
	ticketID, err := queryInt64(c, "ticket_id")
	if err != nil {
		return err
	}
	asc, err := queryBool(c, "asc")
	if err != nil {
		return err
	}
	filter := repository.WorkEntryFilter{
		TicketID:   ticketID,
		Nick:       queryString(c, "nick"),
		AgentCode:  queryString(c, "agent"),
		SearchTerm: queryString(c, "q"),
		OrderByEnd: c.Query("order_by") == "end",
		Ascending:  asc != nil && *asc,
		Limit:      parseInt(c.Query("limit"), 20),
		Offset:     parseInt(c.Query("offset"), 0),
	}
	entries, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkEntryResponses(entries)})
}

// Get GET /work-entries/:id.
func (h *WorkEntriesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkEntryResponse(entry)})
}

// Update PATCH /work-entries/:id.
func (h *WorkEntriesHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.WorkEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.service.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkEntryResponse(entry)})
}

// Delete DELETE /work-entries/:id.
func (h *WorkEntriesHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
