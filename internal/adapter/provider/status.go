package provider

import "errors"

// Status is a provider status code and its fixed message.
type Status struct {
	Code    int
	Message string
}

// StatusRule maps every error matching Err to Status.
type StatusRule struct {
	Err    error
	Status Status
}

// StatusTable maps engine outcomes to provider statuses. Rules are checked in
// order with errors.Is; Fallback covers anything unmapped.
type StatusTable struct {
	OK       Status
	Rules    []StatusRule
	Fallback Status
}

// Lookup returns the status for err. A nil err is OK.
func (t StatusTable) Lookup(err error) Status {
	if err == nil {
		return t.OK
	}

	for _, rule := range t.Rules {
		if errors.Is(err, rule.Err) {
			return rule.Status
		}
	}

	return t.Fallback
}
