package domain

import "fmt"

// WorkStatus tracks what is left to do with a work entry in billing terms.
type WorkStatus int

const (
	WorkStatusSubtractStock    WorkStatus = -1
	WorkStatusNone             WorkStatus = 0
	WorkStatusMakeInvoice      WorkStatus = 1
	WorkStatusInvoiced         WorkStatus = 2
	WorkStatusMakeDeliveryNote WorkStatus = 3
	WorkStatusDeliveryNote     WorkStatus = 4
	WorkStatusMakeEstimation   WorkStatus = 5
	WorkStatusEstimation       WorkStatus = 6
)

var workStatusNames = map[WorkStatus]string{
	WorkStatusSubtractStock:    "SUBTRACT_STOCK",
	WorkStatusNone:             "NONE",
	WorkStatusMakeInvoice:      "MAKE_INVOICE",
	WorkStatusInvoiced:         "INVOICED",
	WorkStatusMakeDeliveryNote: "MAKE_DELIVERY_NOTE",
	WorkStatusDeliveryNote:     "DELIVERY_NOTE",
	WorkStatusMakeEstimation:   "MAKE_ESTIMATION",
	WorkStatusEstimation:       "ESTIMATION",
}

func (s WorkStatus) String() string {
	if name, ok := workStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("WorkStatus(%d)", int(s))
}

// Valid reports whether s can be stored on a work entry.
// SUBTRACT_STOCK is only a marker and never persisted.
func (s WorkStatus) Valid() bool {
	return s >= WorkStatusNone && s <= WorkStatusEstimation
}

// ConsumesStock reports whether a work entry in this status keeps its quantity
// reserved against the warehouse stock.
func ConsumesStock(s WorkStatus) bool {
	switch s {
	case WorkStatusNone, WorkStatusMakeInvoice, WorkStatusMakeDeliveryNote:
		return true
	default:
		return false
	}
}

// Reservation returns the quantity held against stock for the given status.
func Reservation(s WorkStatus, quantity float64) float64 {
	if !ConsumesStock(s) {
		return 0
	}
	return quantity
}
