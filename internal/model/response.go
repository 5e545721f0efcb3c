package model

// Response is the standard envelope for every endpoint. Failures always carry
// success=false plus a human-readable message; internal error detail is
// logged, never echoed to the caller.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	APIKey  string `json:"apiKey,omitempty"` // set by POST /create only
}

// DashboardResponse wraps the admin dashboard listing of user/key pairs with
// their derived liveness status.
type DashboardResponse struct {
	Success bool            `json:"success"`
	Data    []UserKeyStatus `json:"data"`
}
