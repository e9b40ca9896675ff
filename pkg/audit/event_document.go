package audit

import "fmt"

// Document operations recorded by DocumentEvent
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// DocumentEvent records a change to a stored document made on behalf of a user
type DocumentEvent struct {
	Username     string
	ClientIP     string
	Kind         string
	DocumentID   string
	Operation    string
	Success      bool
	ErrorMessage string
}

func (e DocumentEvent) MessageID() string {
	return "document"
}

func (e DocumentEvent) Message() string {
	target := e.Kind
	if e.DocumentID != "" {
		target = fmt.Sprintf("%s %s", e.Kind, e.DocumentID)
	}
	if e.Success {
		return fmt.Sprintf("%s %sd %s", e.Username, e.Operation, target)
	}
	msg := fmt.Sprintf("%s tried to %s %s", e.Username, e.Operation, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e DocumentEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e DocumentEvent) Facility() int {
	return FacilityAuth
}

func (e DocumentEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"kind": e.Kind,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.DocumentID != "" {
		sd[SDIDSubject]["id"] = e.DocumentID
	}
	return sd
}
