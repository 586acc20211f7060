package driven

// Template names used with TemplateStore.Load.
const (
	// TemplateReminder is the default reminder message body.
	TemplateReminder = "reminder"
)

// TemplateStore loads user-editable message templates.
// Implementations fall back to embedded defaults when no user file exists.
type TemplateStore interface {
	// Load returns the template body for the given name.
	Load(name string) (string, error)

	// Reload clears any cached templates, forcing fresh loads.
	Reload()

	// Dir returns the template directory path.
	Dir() string
}
