package equipments

import "time"

// Equipment types the mobile app offers; OTRO requires CustomType.
var ValidTypes = []string{
	"SPLIT_INVERTER",
	"SPLIT_ON_OFF",
	"VENTANA",
	"HELADERA",
	"FREEZER",
	"CAMARA",
	"OTRO",
}

func IsValidType(t string) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}

// TypeLabel is the human label shown on the public equipment page.
func TypeLabel(t, customType string) string {
	switch t {
	case "SPLIT_INVERTER":
		return "Aire split (inverter)"
	case "SPLIT_ON_OFF":
		return "Aire split (on/off)"
	case "VENTANA":
		return "Aire ventana"
	case "HELADERA":
		return "Heladera"
	case "FREEZER":
		return "Congelador"
	case "CAMARA":
		return "Cámara"
	case "OTRO":
		if customType != "" {
			return customType
		}
		return "Otro"
	}
	return t
}

type Equipment struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	ClientID   int       `json:"client_id"`
	PublicID   string    `json:"public_id"`
	Type       string    `json:"type"`
	CustomType string    `json:"custom_type,omitempty"`
	Brand      string    `json:"brand,omitempty"`
	Model      string    `json:"model,omitempty"`
	Serial     string    `json:"serial,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
