package matching

const (
	DefaultSearchRadius = 20.0 // meters
	DefaultMaxMatches   = 10
)
