package model

// Profile visibility values for Settings.ProfileVisibility.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Settings holds per-user preferences. They live under the "settings_<userId>"
// storage key, separate from the User record.
type Settings struct {
	EmailNotifications  bool   `json:"emailNotifications"`
	PushNotifications   bool   `json:"pushNotifications"`
	TournamentReminders bool   `json:"tournamentReminders"`
	TeamUpdates         bool   `json:"teamUpdates"`
	Newsletter          bool   `json:"newsletter"`
	TwoFactor           bool   `json:"twoFactor"`
	LoginAlerts         bool   `json:"loginAlerts"`
	ProfileVisibility   string `json:"profileVisibility"`
}

// DefaultSettings is what a user sees before saving any preference.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications:  true,
		PushNotifications:   true,
		TournamentReminders: true,
		TeamUpdates:         true,
		Newsletter:          false,
		TwoFactor:           false,
		LoginAlerts:         true,
		ProfileVisibility:   VisibilityPublic,
	}
}

// CartItem is one line of the storefront cart.
type CartItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}
