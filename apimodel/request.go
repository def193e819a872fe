package apimodel

// Command names accepted on the command channel.
const (
	CommandDrawIcon     = "draw_icon"
	CommandClearIcon    = "clear_icon"
	CommandDrawImage    = "draw_image"
	CommandIconBarColor = "icon_bar_color"
	CommandBacklight    = "backlight"
)

type DrawIconRequest struct {
	Command string `json:"command"`
	Icon    string `json:"icon"`
}

type ClearIconRequest struct {
	Command string `json:"command"`
	Icon    string `json:"icon"`
}

type DrawImageRequest struct {
	Command      string `json:"command"`
	RelativePath string `json:"relative_path"`
}

type IconBarColorRequest struct {
	Command string `json:"command"`
	R       int    `json:"r"`
	G       int    `json:"g"`
	B       int    `json:"b"`
	A       int    `json:"a"`
}

type BacklightRequest struct {
	Command string `json:"command"`
}

// Status is returned by the status endpoint.
type Status struct {
	Backlight    bool              `json:"backlight"`
	LastActivity string            `json:"last_activity"`
	ActiveIcons  map[string]string `json:"active_icons"`
	IconBarColor [4]int            `json:"icon_bar_color"`
}
