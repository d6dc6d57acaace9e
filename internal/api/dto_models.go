package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NormalizedCoordinates answers POST /coordinates/normalize. Only the requested axes are
// set.
type NormalizedCoordinates struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LatitudeDMS  string   `json:"latitudeDms,omitempty"`
	LongitudeDMS string   `json:"longitudeDms,omitempty"`
}

// WorkTypesResponse lists the work types a check-in may name.
type WorkTypesResponse struct {
	WorkTypes []string `json:"workTypes"`
}
