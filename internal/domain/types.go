package domain

// ID is used across domain entities.
type ID int64

// AdminIdentity carries the authenticated administrator resolved from a bearer token.
type AdminIdentity struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// RouteCount is one row of the popular-routes aggregation.
type RouteCount struct {
	Route    string `json:"route"`
	BusCount int    `json:"busCount"`
}
