package board

// Layout is the direction scenes flow inside an act.
type Layout string

const (
	LayoutVertical   Layout = "vertical"
	LayoutHorizontal Layout = "horizontal"
)

// DefaultActStructure is the number of acts created with a new project.
const DefaultActStructure = 3

// TimesOfDay lists the accepted values for Payload.TimeOfDay.
var TimesOfDay = []string{"DAY", "NIGHT", "DUSK", "DAWN"}

// Project is a story project. It owns acts, scenes and every auxiliary row.
type Project struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ActStructure    int     `json:"act_structure"`
	LayoutDirection Layout  `json:"layout_direction"`
	PrimaryColor    string  `json:"primary_color"`
	SecondaryColor  string  `json:"secondary_color"`
	CellRatio       float64 `json:"cell_dimension_ratio"`
	CreatedAt       string  `json:"created_at"`
	LastModified    string  `json:"last_modified"`
}

// Act is an ordered container of scenes.
// Number is the ordinal, dense 1..M across the acts of a project.
// Ratio is a display attribute only and plays no part in ordering.
type Act struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	Number    int     `json:"act_number"`
	Name      string  `json:"name,omitempty"`
	Ratio     float64 `json:"cell_dimension_ratio"`
}

// Scene is the orderable unit. Number is the order key within ActID.
type Scene struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	ActID     string  `json:"act_id"`
	Number    int     `json:"scene_number"`
	Payload   Payload `json:"payload"`
}

// Payload holds the descriptive fields of a scene.
type Payload struct {
	Title        string `json:"title"`
	Location     string `json:"location,omitempty"`
	TimeOfDay    string `json:"time_of_day,omitempty"`
	HeroImageURL string `json:"hero_image_url,omitempty"`
}

// ValidTimeOfDay reports whether s is empty or one of TimesOfDay.
func ValidTimeOfDay(s string) bool {
	if s == "" {
		return true
	}
	for _, t := range TimesOfDay {
		if t == s {
			return true
		}
	}
	return false
}
