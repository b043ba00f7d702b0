package web

const StyleguidePath = "/styleguide"

type Component struct {
	Name          string
	Slug          string
	Group         string
	Description   string
	Accessibility []string
}

func (c Component) Href() string {
	return StyleguidePath + "/components/" + c.Slug
}

type NavItem struct {
	Name string
	Href string
}

type NavSection struct {
	Title string
	Items []NavItem
}

const (
	GroupForms       = "Forms"
	GroupLayout      = "Layout"
	GroupFeedback    = "Feedback"
	GroupOverlay     = "Overlay"
	GroupDataDisplay = "Data Display"
)

// Components is the catalog in navigation order.
var Components = []Component{
	{Name: "Button", Slug: "button", Group: GroupForms,
		Description: "Displays a button or a component that looks like a button.",
		Accessibility: []string{
			"Keyboard accessible: can be focused and activated with Enter or Space",
			"Disabled state prevents interaction and is announced to screen readers",
			"Use descriptive text or aria-label for icon-only buttons",
		}},
	{Name: "Input", Slug: "input", Group: GroupForms,
		Description: "A text input field for user data entry.",
		Accessibility: []string{
			"Always pair an input with a visible label",
			"Use the matching input type so mobile keyboards adapt",
		}},
	{Name: "Label", Slug: "label", Group: GroupForms,
		Description: "Renders an accessible label associated with form controls."},
	{Name: "Textarea", Slug: "textarea", Group: GroupForms,
		Description: "Displays a form textarea or a component that looks like a textarea."},
	{Name: "Select", Slug: "select", Group: GroupForms,
		Description: "Displays a list of options for the user to pick from, triggered by a button."},
	{Name: "Switch", Slug: "switch", Group: GroupForms,
		Description: "A control that allows the user to toggle between checked and not checked.",
		Accessibility: []string{
			"Uses role=switch with aria-checked reflecting the state",
			"Space toggles the switch when focused",
		}},
	{Name: "Radio Group", Slug: "radio-group", Group: GroupForms,
		Description: "A set of checkable buttons where no more than one of the buttons can be checked at a time."},
	{Name: "Form", Slug: "form", Group: GroupForms,
		Description: "Building validated forms with field level error messages.",
		Accessibility: []string{
			"Error messages are linked to their field with aria-describedby",
			"The submit button is disabled while the request is in flight",
		}},
	{Name: "Card", Slug: "card", Group: GroupLayout,
		Description: "Displays a card with header, content, and footer."},
	{Name: "Separator", Slug: "separator", Group: GroupLayout,
		Description: "Visually or semantically separates content."},
	{Name: "Tabs", Slug: "tabs", Group: GroupLayout,
		Description: "A set of layered sections of content, known as tab panels, that are displayed one at a time."},
	{Name: "Accordion", Slug: "accordion", Group: GroupLayout,
		Description: "A vertically stacked set of interactive headings that each reveal a section of content."},
	{Name: "Scroll Area", Slug: "scroll-area", Group: GroupLayout,
		Description: "Augments native scroll functionality for custom, cross-browser styling."},
	{Name: "Badge", Slug: "badge", Group: GroupFeedback,
		Description: "Displays a badge or a component that looks like a badge."},
	{Name: "Progress", Slug: "progress", Group: GroupFeedback,
		Description: "Displays an indicator showing the completion progress of a task, typically displayed as a progress bar."},
	{Name: "Toast", Slug: "toast", Group: GroupFeedback,
		Description: "A succinct message that is displayed temporarily."},
	{Name: "Dialog", Slug: "dialog", Group: GroupOverlay,
		Description: "A window overlaid on either the primary window or another dialog window, rendering the content underneath inert.",
		Accessibility: []string{
			"Focus moves into the dialog when it opens and returns to the trigger when it closes",
			"Escape closes the dialog",
		}},
	{Name: "Dropdown Menu", Slug: "dropdown-menu", Group: GroupOverlay,
		Description: "Displays a menu to the user, such as a set of actions or functions, triggered by a button."},
	{Name: "Popover", Slug: "popover", Group: GroupOverlay,
		Description: "Displays rich content in a portal, triggered by a button."},
	{Name: "Table", Slug: "table", Group: GroupDataDisplay,
		Description: "A responsive table component for displaying data."},
	{Name: "Data Table", Slug: "data-table", Group: GroupDataDisplay,
		Description: "Advanced table with sorting, filtering, pagination, and row selection."},
	{Name: "Calendar", Slug: "calendar", Group: GroupDataDisplay,
		Description: "A date field component that allows users to enter and edit date."},
	{Name: "Avatar", Slug: "avatar", Group: GroupDataDisplay,
		Description: "An image element with a fallback for representing the user."},
}

var componentsBySlug = func() map[string]Component {
	m := make(map[string]Component, len(Components))
	for _, c := range Components {
		m[c.Slug] = c
	}
	return m
}()

func LookupComponent(slug string) (Component, bool) {
	c, ok := componentsBySlug[slug]
	return c, ok
}

// Navigation is the styleguide sidebar: a Foundation section followed by every component.
func Navigation() []NavSection {
	items := make([]NavItem, 0, len(Components))
	for _, c := range Components {
		items = append(items, NavItem{Name: c.Name, Href: c.Href()})
	}

	return []NavSection{
		{Title: "Foundation", Items: []NavItem{{Name: "Design Tokens", Href: StyleguidePath}}},
		{Title: "Components", Items: items},
	}
}

type Swatch struct {
	Name string
	Hex  string
}

type ThemeColor struct {
	Label      string
	Background string
	Foreground string
	BgHex      string
	FgHex      string
}

type TypeSample struct {
	Size  string
	Class string
	Text  string
}

type RadiusSample struct {
	Name  string
	Label string
}

type DesignTokens struct {
	Theme        []ThemeColor
	PrimaryScale []Swatch
	GreyScale    []Swatch
	Semantic     []Swatch
	Chart        []Swatch
	Headings     []TypeSample
	Body         []TypeSample
	Radii        []RadiusSample
	Shadows      []string
}

var Tokens = DesignTokens{
	Theme: []ThemeColor{
		{Label: "Background", Background: "--background", Foreground: "--foreground", BgHex: "#f8fafc", FgHex: "#0f172a"},
		{Label: "Card", Background: "--card", Foreground: "--card-foreground", BgHex: "#ffffff", FgHex: "#0f172a"},
		{Label: "Primary", Background: "--primary", Foreground: "--primary-foreground", BgHex: "#10b981", FgHex: "#ffffff"},
		{Label: "Secondary", Background: "--secondary", Foreground: "--secondary-foreground", BgHex: "#f1f5f9", FgHex: "#1e293b"},
		{Label: "Muted", Background: "--muted", Foreground: "--muted-foreground", BgHex: "#f1f5f9", FgHex: "#64748b"},
		{Label: "Accent", Background: "--accent", Foreground: "--accent-foreground", BgHex: "#ecfdf5", FgHex: "#065f46"},
		{Label: "Destructive", Background: "--destructive", Foreground: "--destructive-foreground", BgHex: "#ef4444", FgHex: "#ffffff"},
	},
	PrimaryScale: []Swatch{
		{"50", "#ecfdf5"}, {"100", "#d1fae5"}, {"200", "#a7f3d0"}, {"300", "#6ee7b7"}, {"400", "#34d399"},
		{"500", "#10b981"}, {"600", "#059669"}, {"700", "#047857"}, {"800", "#065f46"}, {"900", "#064e3b"},
	},
	GreyScale: []Swatch{
		{"50", "#f8fafc"}, {"100", "#f1f5f9"}, {"200", "#e2e8f0"}, {"300", "#cbd5e1"}, {"400", "#94a3b8"},
		{"500", "#64748b"}, {"600", "#475569"}, {"700", "#334155"}, {"800", "#1e293b"}, {"900", "#0f172a"},
	},
	Semantic: []Swatch{
		{"Success", "#10b981"}, {"Warning", "#f59e0b"}, {"Error", "#ef4444"}, {"Info", "#3b82f6"},
	},
	Chart: []Swatch{
		{"Chart 1", "#10b981"}, {"Chart 2", "#3b82f6"}, {"Chart 3", "#8b5cf6"}, {"Chart 4", "#f59e0b"}, {"Chart 5", "#ef4444"},
	},
	Headings: []TypeSample{
		{Size: "4xl", Class: "text-4xl font-bold", Text: "Smart Flow Nutrition"},
		{Size: "3xl", Class: "text-3xl font-bold", Text: "Dashboard"},
		{Size: "2xl", Class: "text-2xl font-semibold", Text: "Patients"},
		{Size: "xl", Class: "text-xl font-semibold", Text: "Patient List"},
		{Size: "lg", Class: "text-lg font-medium", Text: "Appointments Today"},
	},
	Body: []TypeSample{
		{Size: "base", Class: "text-base", Text: "Manage your patients and appointments efficiently."},
		{Size: "sm", Class: "text-sm", Text: "Overview of your practice"},
		{Size: "xs", Class: "text-xs", Text: "+12% vs. last month"},
		{Size: "muted", Class: "text-sm text-muted", Text: "6 patients found"},
	},
	Radii: []RadiusSample{
		{"sm", "4px"}, {"md", "6px"}, {"lg", "8px"}, {"xl", "12px"}, {"full", "9999px"},
	},
	Shadows: []string{"sm", "default", "md", "lg", "xl"},
}

// StyleguideView is the Content of every styleguide page.
type StyleguideView struct {
	Navigation []NavSection
	Component  *Component
	Tokens     *DesignTokens
}
