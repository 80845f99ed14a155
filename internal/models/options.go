package models

// Option is one entry of a form select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormOptions are the select choices offered by the resume form.
type FormOptions struct {
	Nationalities []Option `json:"nationalities"`
	VisaTypes     []Option `json:"visaTypes"`
}

// Nationalities offered by the nationality select.
var Nationalities = []Option{
	{Value: "vietnam", Label: "Vietnam"},
	{Value: "china", Label: "China"},
	{Value: "japan", Label: "Japan"},
	{Value: "thailand", Label: "Thailand"},
	{Value: "philippines", Label: "Philippines"},
	{Value: "nepal", Label: "Nepal"},
	{Value: "mongolia", Label: "Mongolia"},
	{Value: "other", Label: "Other"},
}

// VisaTypes offered by the visa select.
var VisaTypes = []Option{
	{Value: "e9", Label: "E-9 (Non-professional Employment)"},
	{Value: "h2", Label: "H-2 (Working Visit)"},
	{Value: "d2", Label: "D-2 (Student)"},
	{Value: "e7", Label: "E-7 (Specific Activities)"},
	{Value: "e8", Label: "E-8 (Seasonal Worker)"},
	{Value: "e6", Label: "E-6 (Arts and Entertainment)"},
	{Value: "c4", Label: "C-4 (Short-term Employment)"},
	{Value: "f4", Label: "F-4 (Overseas Korean)"},
}

// DefaultFormOptions returns the option catalog served to the form.
func DefaultFormOptions() FormOptions {
	return FormOptions{
		Nationalities: append([]Option(nil), Nationalities...),
		VisaTypes:     append([]Option(nil), VisaTypes...),
	}
}

// OptionLabel returns the label for value, or value itself when it is not in opts.
func OptionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
