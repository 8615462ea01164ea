package alert

// Template is how presentation sinks render a category.
type Template struct {
	// Title is the headline.
	Title string
	// Message is the longer explanation.
	Message string
	// Voice is the short text for speech output.
	Voice string
}

var templates = map[Category]Template{
	CategoryFatigue: {
		Title:   "Fatigue Detected",
		Message: "You look tired. Please take a break to rest your eyes and body.",
		Voice:   "You look tired. Please take a break.",
	},
	CategoryDistance: {
		Title:   "Too Close to Screen",
		Message: "You are sitting too close. Please move back to protect your eyesight.",
		Voice:   "You are too close to the screen. Please move back.",
	},
	CategoryPosture: {
		Title:   "Poor Posture Detected",
		Message: "Please sit up straight to avoid back and neck problems.",
		Voice:   "Poor posture detected. Please sit up straight.",
	},
	CategorySevere: {
		Title:   "Severe Fatigue Warning",
		Message: "Immediate rest required! You have been working too long without a break.",
		Voice:   "Severe fatigue detected! Please rest immediately.",
	},
}

// TemplateFor returns the template of the event's category. Unknown
// categories fall back to the event message.
func TemplateFor(event *Event) Template {
	if template, ok := templates[event.Category]; ok {
		return template
	}

	return Template{
		Title:   "Alert",
		Message: event.Message,
		Voice:   event.Message,
	}
}
