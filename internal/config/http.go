package config

const (
	HAccept         = "Accept"
	HAuthorization  = "Authorization"
	HCType          = "Content-Type"
	HIdempotencyKey = "Idempotency-Key"
	HUserAgent      = "User-Agent"

	CTypeJSON = "application/json"

	BearerPrefix = "Bearer "
)
