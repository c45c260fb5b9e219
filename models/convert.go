package models

// HeaderFieldRequest is one caller-supplied metadata pair, submitted as the
// header_fields form field (a JSON array, order preserved).
type HeaderFieldRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ConvertResponse is the summary returned for a finished conversion
type ConvertResponse struct {
	ID               string `json:"id"`
	RowsProcessed    int    `json:"rows_processed"`
	ConversionTimeMs int64  `json:"conversion_time_ms"`
	OutputFile       string `json:"output_file"`
	Encrypted        bool   `json:"encrypted"`
}

// ErrorResponse carries the error kind and a human-readable message
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
