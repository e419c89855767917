package api

// Endpoints served by the ROP screening backend, relative to the base URL.
const (
	EndpointStats             = "/stats"
	EndpointPatients          = "/patients"
	EndpointAppointments      = "/appointments"
	EndpointAppointmentsToday = "/appointments/today"
	EndpointImageUpload       = "/images/upload"
	EndpointImageHistory      = "/images/history"
	EndpointImageReview       = "/images/review"
	EndpointImageFile         = "/image"
)

// Stats holds the key metrics shown on the role dashboards.
type Stats struct {
	TotalPatients       int `json:"totalPatients"`
	AppointmentsToday   int `json:"appointmentsToday"`
	PendingReview       int `json:"pendingReview"`
	TotalReviewed       int `json:"totalReviewed"`
	ImagesUploadedToday int `json:"imagesUploadedToday"`
	TotalUploads        int `json:"totalUploads"`
	PendingProcessing   int `json:"pendingProcessing"`
	AverageUploadTime   int `json:"averageUploadTime"`
}

// Patient is a neonate record.
type Patient struct {
	ID             string   `json:"_id"`
	NeonateID      string   `json:"neonate_id"`
	Name           string   `json:"name"`
	BirthDate      string   `json:"birth_date"`
	GestationalAge string   `json:"gestational_age"`
	Weight         *float64 `json:"weight"`
	ParentName     string   `json:"parent_name"`
	ParentPhone    string   `json:"parent_phone"`
	ParentEmail    string   `json:"parent_email"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
}

// NewPatient is the request body for creating a patient record.
type NewPatient struct {
	Name           string `json:"name"`
	NeonateID      string `json:"neonate_id"`
	BirthDate      string `json:"birth_date"`
	GestationalAge string `json:"gestational_age,omitempty"`
	Weight         string `json:"weight,omitempty"`
	ParentName     string `json:"parent_name"`
	ParentPhone    string `json:"parent_phone,omitempty"`
	ParentEmail    string `json:"parent_email,omitempty"`
}

// Appointment is a scheduled ROP scan.
type Appointment struct {
	ID          string `json:"_id"`
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	DateTime    string `json:"datetime"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// NewAppointment is the request body for scheduling an appointment.
type NewAppointment struct {
	PatientID string `json:"patientId"`
	DateTime  string `json:"datetime"`
	Type      string `json:"type"`
}

// AIResult is the server-computed classification attached to an uploaded image.
// Consumed read-only by this client.
type AIResult struct {
	Status      string  `json:"status"`
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
}

// ImageRecord is an uploaded fundus image with its processing state.
type ImageRecord struct {
	ID          string   `json:"_id"`
	PatientID   string   `json:"patientId"`
	PatientName string   `json:"patientName"`
	Filename    string   `json:"filename"`
	UploadTime  string   `json:"upload_time"`
	FileSize    string   `json:"file_size"`
	Status      string   `json:"status"`
	AIResult    AIResult `json:"ai_result"`
}

// UploadResponse is the body returned by the image upload endpoint.
type UploadResponse struct {
	Message  string   `json:"message"`
	ImageID  string   `json:"imageId"`
	AIResult AIResult `json:"aiResult"`
}

// CreatedResponse is the body returned by record-creating endpoints.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
