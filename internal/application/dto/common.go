package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CountResponse conteo simple (ej. mensajes sin leer).
type CountResponse struct {
	Count int `json:"count"`
}
