// Canned JSON error bodies. Kept as raw strings so error paths never
// need to marshal anything.
package constants

const (
	EndpointNotFound    = `{"success":false,"message":"Endpoint not found"}`
	MethodNotAllowed    = `{"success":false,"message":"Method not allowed"}`
	ResourceNotFound    = `{"success":false,"message":"Resource not found"}`
	BadRequest          = `{"success":false,"message":"Bad request"}`
	Forbidden           = `{"success":false,"message":"Forbidden"}`
	Unauthorized        = `{"success":false,"message":"Unauthorized"}`
	InternalServerError = `{"success":false,"message":"Internal server error"}`
	BodyRequired        = `{"success":false,"message":"Request body is required"}`
)
