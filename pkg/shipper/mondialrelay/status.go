package mondialrelay

// Status levels used by the carrier.
const (
	LevelError   = "Error"
	LevelWarning = "Warning"
)

// Status is one entry of a response status list.
type Status struct {
	Code    string
	Level   string
	Message string
}

// Fatal reports whether the entry aborts the operation.
func (s Status) Fatal() bool {
	return s.Level == LevelError
}

// ClassifyStatuses walks statuses in document order. The first Error entry
// stops the walk and is returned as a carrier error; every entry before it
// is returned as a warning.
func ClassifyStatuses(statuses []Status) (warnings []Status, err error) {
	for _, s := range statuses {
		if s.Fatal() {
			return warnings, carrierError(s)
		}
		warnings = append(warnings, s)
	}
	return warnings, nil
}
