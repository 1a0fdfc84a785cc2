package models

// Salon is a marketplace venue.
type Salon struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	City      string  `json:"city"`
	Address   string  `json:"address"`
	Image     string  `json:"image,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Rating    float64 `json:"rating"`
	Active    bool    `json:"active"`
	OwnerName string  `json:"owner_name,omitempty"`
}

// SalonPayload creates or updates a salon. Image holds the uploaded image_name.
type SalonPayload struct {
	Name    string `json:"name" validate:"required,max=150"`
	Phone   string `json:"phone" validate:"required,max=30"`
	City    string `json:"city" validate:"required,max=100"`
	Address string `json:"address" validate:"max=300"`
	Image   string `json:"image,omitempty" validate:"omitempty,max=255,excludes=://"`
	Active  *bool  `json:"active,omitempty"`
}

// Service is an offering that belongs to a group.
type Service struct {
	ID       int64   `json:"id"`
	GroupID  int64   `json:"group_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration int     `json:"duration"`
	Icon     string  `json:"icon,omitempty"`
	IconURL  string  `json:"icon_url,omitempty"`
	Active   bool    `json:"active"`
}

// ServicePayload creates or updates a service. Icon holds the uploaded image_name.
type ServicePayload struct {
	GroupID  int64   `json:"group_id" validate:"required,gt=0"`
	Name     string  `json:"name" validate:"required,max=150"`
	Price    float64 `json:"price" validate:"gte=0"`
	Duration int     `json:"duration" validate:"required,gt=0,lte=1440"`
	Icon     string  `json:"icon,omitempty" validate:"omitempty,max=255,excludes=://"`
	Active   *bool   `json:"active,omitempty"`
}

// ServiceGroup is the manually ordered category of services.
type ServiceGroup struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Orders int64  `json:"orders"`
}

func (g ServiceGroup) Key() int64  { return g.ID }
func (g ServiceGroup) Rank() int64 { return g.Orders }
func (g ServiceGroup) WithRank(r int64) ServiceGroup {
	g.Orders = r
	return g
}

// ServiceGroupPayload creates or renames a group.
type ServiceGroupPayload struct {
	Name string `json:"name" validate:"required,max=100"`
	Icon string `json:"icon,omitempty" validate:"omitempty,max=255,excludes=://"`
}

// WorkingHours is one day of a salon's opening schedule. Day is 0 (Sunday) to 6.
type WorkingHours struct {
	Day     int    `json:"day" validate:"gte=0,lte=6"`
	Opening string `json:"opening" validate:"omitempty,clock"`
	Closing string `json:"closing" validate:"omitempty,clock"`
	Closed  bool   `json:"closed"`
}

// WorkingHoursPayload saves several days in one submission.
type WorkingHoursPayload struct {
	Days []WorkingHours `json:"days" validate:"required,min=1,max=7,dive"`
}
