package constant

type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// Terminal reports whether the session no longer accepts state updates.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed
}

type AlertType string

const (
	AlertTypeAmbulance    AlertType = "ambulance"
	AlertTypePedestrian   AlertType = "pedestrian"
	AlertTypeHeavyTraffic AlertType = "heavy_traffic"
	AlertTypeWarning      AlertType = "warning"
	AlertTypeInfo         AlertType = "info"
)

func (a AlertType) Valid() bool {
	switch a {
	case AlertTypeAmbulance, AlertTypePedestrian, AlertTypeHeavyTraffic, AlertTypeWarning, AlertTypeInfo:
		return true
	}
	return false
}

type Direction string

const (
	DirectionNorth Direction = "north"
	DirectionSouth Direction = "south"
	DirectionEast  Direction = "east"
	DirectionWest  Direction = "west"
)

// Directions is the fixed order used for uploads and per-direction columns.
var Directions = []Direction{DirectionNorth, DirectionSouth, DirectionEast, DirectionWest}

func (d Direction) String() string {
	return string(d)
}

type SignalColor string

const (
	SignalRed    SignalColor = "red"
	SignalYellow SignalColor = "yellow"
	SignalGreen  SignalColor = "green"
)

// Broadcast event names, shared by the websocket transport and the dashboard.
const (
	EventSimulationUpdate = "simulation_update"
	EventAlert            = "alert"
)

// Queue routing keys for updates published by the CV service.
const (
	RoutingKeyUpdate   = "simulation.update"
	RoutingKeyAlert    = "simulation.alert"
	RoutingKeyComplete = "simulation.complete"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
