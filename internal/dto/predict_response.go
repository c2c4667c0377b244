package dto

// PredictResponse is the JSON body returned by the prediction service.
// Pointer fields distinguish missing keys from zero values.
type PredictResponse struct {
	Image      *string     `json:"image"`
	Count      *int        `json:"count"`
	Detections []Detection `json:"detections"`
	Timestamp  *string     `json:"timestamp"`
	Error      string      `json:"error"`
}

// Detection is one detected object in a PredictResponse.
type Detection struct {
	Label *string `json:"label"`
}
