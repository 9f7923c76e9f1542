package domain

// Status is a ticket workflow state configured by the administrator.
type Status struct {
	ID             int64
	Name           string
	Editable       bool
	Default        bool
	Assignee       *string
	Color          *string
	NotifyAssignee bool
	NotifyAgent    bool
	NotifyCustomer bool
	NotifyUser     bool
}

// Priority ranks tickets.
type Priority struct {
	ID      int64
	Name    string
	Default bool
}

// DefaultStatus returns the status flagged as default, if any.
func DefaultStatus(statuses []Status) (Status, bool) {
	for _, status := range statuses {
		if status.Default {
			return status, true
		}
	}
	return Status{}, false
}

// DefaultPriority returns the priority flagged as default, if any.
func DefaultPriority(priorities []Priority) (Priority, bool) {
	for _, priority := range priorities {
		if priority.Default {
			return priority, true
		}
	}
	return Priority{}, false
}
