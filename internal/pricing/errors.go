package pricing

import "fmt"

// ValidationError reports request input outside its allowed bounds
type ValidationError struct {
	Field string
	Type  string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// ContractMonthNotFoundError reports a requested contract month with no stored price
type ContractMonthNotFoundError struct {
	ContractMonth string
}

func (e *ContractMonthNotFoundError) Error() string {
	return fmt.Sprintf("contract month %s not found", e.ContractMonth)
}
