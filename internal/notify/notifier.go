package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Template keys sent for ticket events.
const (
	TemplateNewAssignee = "new-service-assignee"
	TemplateNewAgent    = "new-service-agent"
	TemplateNewCustomer = "new-service-customer"
	TemplateNewUser     = "new-service-user"
	TemplateNewStatus   = "new-service-status"
)

// Notifier delivers a templated message to one recipient.
type Notifier interface {
	Send(ctx context.Context, templateKey, toEmail, toName string, vars map[string]any) error
}

var subjects = map[string]string{
	TemplateNewAssignee: "Service #{number} has been assigned to you",
	TemplateNewAgent:    "Service #{number} for {customer}",
	TemplateNewCustomer: "Your service request #{number}",
	TemplateNewUser:     "Service #{number} is now yours",
	TemplateNewStatus:   "Service #{number} changed to {status}",
}

var intros = map[string]string{
	TemplateNewAssignee: "Service #{number} for {customer} has been assigned to you by {author}.",
	TemplateNewAgent:    "Service #{number} for {customer} has been linked to you.",
	TemplateNewCustomer: "We have registered your service request #{number}.",
	TemplateNewUser:     "You are now the owner of service #{number} for {customer}.",
	TemplateNewStatus:   "Service #{number} for {customer} is now {status}.",
}

// Render returns the subject and plain text body for a template.
// Unknown keys get a generic subject and list the variables.
func Render(templateKey, toName string, vars map[string]any) (string, string) {
	subject, ok := subjects[templateKey]
	if !ok {
		subject = templateKey
	}
	intro := intros[templateKey]

	var body strings.Builder
	if toName != "" {
		fmt.Fprintf(&body, "Hello %s,\n\n", toName)
	}
	if intro != "" {
		body.WriteString(expand(intro, vars))
		body.WriteString("\n")
	} else {
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&body, "%s: %v\n", k, vars[k])
		}
	}
	if url, ok := vars["url"]; ok && fmt.Sprint(url) != "" {
		fmt.Fprintf(&body, "\n%v\n", url)
	}
	return expand(subject, vars), body.String()
}

func expand(text string, vars map[string]any) string {
	for k, v := range vars {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprint(v))
	}
	return text
}
