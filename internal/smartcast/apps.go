package smartcast

import "sort"

// Sentinel app names returned when the current app cannot be resolved.
// The session layer treats both as "no usable source information".
const (
	AppUnknown    = "Unknown App"
	AppNotRunning = "No App Running"
)

// App describes a launchable SmartCast app. Namespace and ID together
// identify the app to the TV; Message carries an optional launch
// payload (deep link or landing page).
type App struct {
	Name      string `json:"name"`
	Namespace int    `json:"namespace"`
	ID        string `json:"id"`
	Message   string `json:"message,omitempty"`
}

// appCatalogue holds the built-in set of launchable apps. SmartCast
// has no API to enumerate installed apps by name, so launch-by-name
// works off this static list.
var appCatalogue = []App{
	{Name: "SmartCast Home", Namespace: 4, ID: "1", Message: "http://127.0.0.1:12345/scfs/sctv/main.html"},
	{Name: "Netflix", Namespace: 3, ID: "1"},
	{Name: "YouTube", Namespace: 5, ID: "1"},
	{Name: "YouTube TV", Namespace: 5, ID: "3"},
	{Name: "Prime Video", Namespace: 3, ID: "4"},
	{Name: "Hulu", Namespace: 3, ID: "3"},
	{Name: "Disney+", Namespace: 4, ID: "75"},
	{Name: "Vudu", Namespace: 3, ID: "6"},
	{Name: "Plex", Namespace: 3, ID: "9"},
	{Name: "Pluto TV", Namespace: 0, ID: "E6F74C01-7E4E-4446-8857-2227D6E35984", Message: "https://pluto.tv/"},
	{Name: "Tubi", Namespace: 3, ID: "61"},
	{Name: "Crackle", Namespace: 3, ID: "8"},
	{Name: "iHeartRadio", Namespace: 2, ID: "11"},
	{Name: "Pandora", Namespace: 2, ID: "70"},
}

// LookupApp resolves an app by name.
func LookupApp(name string) (App, bool) {
	for _, app := range appCatalogue {
		if app.Name == name {
			return app, true
		}
	}
	return App{}, false
}

// AppNames returns the names of all launchable apps, sorted.
func AppNames() []string {
	names := make([]string, 0, len(appCatalogue))
	for _, app := range appCatalogue {
		names = append(names, app.Name)
	}
	sort.Strings(names)
	return names
}

// resolveAppName maps a namespace/id pair reported by the TV back to
// a catalogue name. An empty ID means nothing is running; an
// unrecognised pair resolves to AppUnknown.
func resolveAppName(namespace int, id string) string {
	if id == "" {
		return AppNotRunning
	}
	for _, app := range appCatalogue {
		if app.Namespace == namespace && app.ID == id {
			return app.Name
		}
	}
	return AppUnknown
}
