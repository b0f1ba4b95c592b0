package entities

import "clearpath-signals/constant"

// Counts holds one vehicle count per approach.
type Counts struct {
	North int `json:"north" gorm:"not null;default:0"`
	South int `json:"south" gorm:"not null;default:0"`
	East  int `json:"east" gorm:"not null;default:0"`
	West  int `json:"west" gorm:"not null;default:0"`
}

func (c Counts) Total() int {
	return c.North + c.South + c.East + c.West
}

// SignalState is the intersection's light configuration as reported by the CV service.
type SignalState struct {
	North           constant.SignalColor `json:"north" gorm:"type:varchar(10);not null;default:'red'"`
	South           constant.SignalColor `json:"south" gorm:"type:varchar(10);not null;default:'red'"`
	East            constant.SignalColor `json:"east" gorm:"type:varchar(10);not null;default:'red'"`
	West            constant.SignalColor `json:"west" gorm:"type:varchar(10);not null;default:'red'"`
	ActiveDirection string               `json:"activeDirection,omitempty" gorm:"type:varchar(10)"`
	Mode            string               `json:"mode,omitempty" gorm:"type:varchar(32);index"`
	Timer           int                  `json:"timer" gorm:"not null;default:0"`
	YellowPhase     bool                 `json:"yellowPhase" gorm:"not null;default:false"`
}

// WithDefaults fills unset light colors with red.
func (s SignalState) WithDefaults() SignalState {
	for _, c := range []*constant.SignalColor{&s.North, &s.South, &s.East, &s.West} {
		if *c == "" {
			*c = constant.SignalRed
		}
	}
	return s
}

// TypeCounts is the per-class breakdown for one approach.
type TypeCounts struct {
	Car   int `json:"Car" gorm:"not null;default:0"`
	Bus   int `json:"Bus" gorm:"not null;default:0"`
	Truck int `json:"Truck" gorm:"not null;default:0"`
	Bike  int `json:"Bike" gorm:"not null;default:0"`
}

type Breakdown struct {
	North TypeCounts `json:"north" gorm:"embedded;embeddedPrefix:north_"`
	South TypeCounts `json:"south" gorm:"embedded;embeddedPrefix:south_"`
	East  TypeCounts `json:"east" gorm:"embedded;embeddedPrefix:east_"`
	West  TypeCounts `json:"west" gorm:"embedded;embeddedPrefix:west_"`
}
