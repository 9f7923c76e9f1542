package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// ServiceTicketsHandler serves the ticket header and its sub-resources.
type ServiceTicketsHandler struct {
	tickets *service.TicketService
	work    *service.WorkEntryService
	siteURL string
}

// NewServiceTicketsHandler constructs handler.
func NewServiceTicketsHandler(tickets *service.TicketService, work *service.WorkEntryService, siteURL string) *ServiceTicketsHandler {
	return &ServiceTicketsHandler{tickets: tickets, work: work, siteURL: siteURL}
}

// Create POST /service-tickets.
func (h *ServiceTicketsHandler) Create(c *fiber.Ctx) error {
	nick, err := actorNick(c)
	if err != nil {
		return err
	}
	var req dto.CreateServiceTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), nick, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceTicketResponse(ticket, h.siteURL)})
}

// List GET /service-tickets.
func (h *ServiceTicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceTicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewServiceTicketResponse(&tickets[i], h.siteURL))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /service-tickets/:id.
func (h *ServiceTicketsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceTicketResponse(ticket, h.siteURL)})
}

// Update PATCH /service-tickets/:id.
func (h *ServiceTicketsHandler) Update(c *fiber.Ctx) error {
	nick, err := actorNick(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateServiceTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Update(c.UserContext(), nick, id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceTicketResponse(ticket, h.siteURL)})
}

// Delete DELETE /service-tickets/:id.
func (h *ServiceTicketsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Machines GET /service-tickets/:id/machines.
func (h *ServiceTicketsHandler) Machines(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	machines, err := h.tickets.Machines(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMachineResponses(machines)})
}

// WorkEntries GET /service-tickets/:id/work-entries.
func (h *ServiceTicketsHandler) WorkEntries(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.tickets.WorkEntries(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWorkEntryResponses(entries)})
}

// AddWorkEntry POST /service-tickets/:id/work-entries.
func (h *ServiceTicketsHandler) AddWorkEntry(c *fiber.Ctx) error {
	nick, err := actorNick(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.WorkEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.work.Create(c.UserContext(), nick, id, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewWorkEntryResponse(entry)})
}

// Audit GET /service-tickets/:id/audit.
func (h *ServiceTicketsHandler) Audit(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.tickets.AuditTrail(c.UserContext(), id, parseInt(c.Query("limit"), 50))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditEntryResponses(entries)})
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{
		CustomerCode: queryString(c, "customer"),
		AgentCode:    queryString(c, "agent"),
		AssignedNick: queryString(c, "assigned"),
		Nick:         queryString(c, "nick"),
		SearchTerm:   queryString(c, "q"),
		Limit:        parseInt(c.Query("limit"), 20),
		Offset:       parseInt(c.Query("offset"), 0),
	}
	var err error
	if filter.Editable, err = queryBool(c, "editable"); err != nil {
		return filter, err
	}
	if filter.StatusID, err = queryInt64(c, "status_id"); err != nil {
		return filter, err
	}
	if filter.PriorityID, err = queryInt64(c, "priority_id"); err != nil {
		return filter, err
	}
	if filter.NetFrom, err = queryFloat(c, "net_from"); err != nil {
		return filter, err
	}
	if filter.NetTo, err = queryFloat(c, "net_to"); err != nil {
		return filter, err
	}
	if filter.CreatedFrom, err = queryTime(c, "created_from"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = queryTime(c, "created_to"); err != nil {
		return filter, err
	}

	if order := c.Query("order_by"); order != "" {
		valid := false
		for _, key := range repository.TicketOrderKeys() {
			if key == order {
				valid = true
				break
			}
		}
		if !valid {
			return filter, apperrors.NewValidationError("invalid order_by",
				map[string]any{"order_by": order, "allowed": strings.Join(repository.TicketOrderKeys(), ",")})
		}
		filter.OrderBy = order
	}
	asc, err := queryBool(c, "asc")
	if err != nil {
		return filter, err
	}
	filter.Ascending = asc != nil && *asc
	return filter, nil
}
