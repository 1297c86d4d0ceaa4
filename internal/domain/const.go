package domain

const (
	// STALE_SENSOR_WINDOW_SECONDS is the default age after which the latest sensor anchor is stale
	STALE_SENSOR_WINDOW_SECONDS = 86400

	// MAX_HEX_BATCH_ID_DIGITS bounds a 0x-prefixed batch id to a bytes32 value
	MAX_HEX_BATCH_ID_DIGITS = 64
	// MAX_DECIMAL_BATCH_ID_DIGITS bounds a decimal batch id to a uint256 value
	MAX_DECIMAL_BATCH_ID_DIGITS = 78

	// MILLISECONDS_THRESHOLD separates payload timestamps given in seconds from those in milliseconds
	MILLISECONDS_THRESHOLD = 1_000_000_000_000
)
