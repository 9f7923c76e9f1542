package domain

import "time"

// Machine is a customer device attended by the technical service.
type Machine struct {
	ID               int64
	Name             string
	Reference        string
	SerialNumber     string
	ManufacturerCode *string
	CustomerCode     *string
	AgentCode        *string
	Description      string
	CreatedAt        time.Time
}
