package models

// ImageUpload is a photo supplied with a register or update request.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// RegisterPlantInput is the body of a plant registration. Latitude and longitude are raw
// text in decimal or DMS notation.
type RegisterPlantInput struct {
	Name          string `json:"name" binding:"required"`
	PlantNumber   string `json:"plantNumber" binding:"required"`
	Type          string `json:"type" binding:"required"`
	Height        string `json:"height" binding:"required"`
	Latitude      string `json:"latitude" binding:"required"`
	Longitude     string `json:"longitude" binding:"required"`
	Health        string `json:"health"`
	Zone          string `json:"zone" binding:"required"`
	WaterSchedule string `json:"waterSchedule"`
	Insects       bool   `json:"insects"`
	Fertilizers   bool   `json:"fertilizers"`
	SoilLevel     bool   `json:"soilLevel"`
	TreeBurnt     bool   `json:"treeBurnt"`
	UnwantedGrass bool   `json:"unwantedGrass"`
	WaterLogging  bool   `json:"waterLogging"`
	Compound      bool   `json:"compound"`

	Image *ImageUpload `json:"-"`
}

// UpdatePlantInput carries the fields to change. Nil pointers are left untouched.
type UpdatePlantInput struct {
	Name          *string `json:"name,omitempty"`
	PlantNumber   *string `json:"plantNumber,omitempty"`
	Type          *string `json:"type,omitempty"`
	Height        *string `json:"height,omitempty"`
	Latitude      *string `json:"latitude,omitempty"`
	Longitude     *string `json:"longitude,omitempty"`
	Health        *string `json:"health,omitempty"`
	Zone          *string `json:"zone,omitempty"`
	WaterSchedule *string `json:"waterSchedule,omitempty"`
	Insects       *bool   `json:"insects,omitempty"`
	Fertilizers   *bool   `json:"fertilizers,omitempty"`
	SoilLevel     *bool   `json:"soilLevel,omitempty"`
	TreeBurnt     *bool   `json:"treeBurnt,omitempty"`
	UnwantedGrass *bool   `json:"unwantedGrass,omitempty"`
	WaterLogging  *bool   `json:"waterLogging,omitempty"`
	Compound      *bool   `json:"compound,omitempty"`

	Image *ImageUpload `json:"-"`
}

// CreateProfileRequest is sent by a signed-in user to create their profile.
type CreateProfileRequest struct {
	FirstName string `json:"firstname" binding:"required"`
	LastName  string `json:"lastname" binding:"required"`
	Phone     string `json:"phone" binding:"required,min=7,max=15"`
	Zone      string `json:"zone" binding:"required"`
	Role      Role   `json:"role"`
}

// UpdateUserRequest changes an existing profile. Nil pointers are left untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"firstname,omitempty"`
	LastName  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,min=7,max=15"`
	Zone      *string `json:"zone,omitempty"`
	Role      *Role   `json:"role,omitempty"`
}

// CheckInRequest records attendance for the calling user.
type CheckInRequest struct {
	WorkType string `json:"workType" binding:"required"`
}

// NormalizeCoordinatesRequest asks for one or both coordinates in decimal degrees.
type NormalizeCoordinatesRequest struct {
	Latitude  *string `json:"latitude,omitempty"`
	Longitude *string `json:"longitude,omitempty"`
}
