package dto

// UserResponse is the public view of a board user.
type UserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// MetaResponse lists the values the create and edit forms offer.
type MetaResponse struct {
	Projects       []string     `json:"projects"`
	DefaultProject string       `json:"default_project"`
	Statuses       []string     `json:"statuses"`
	Priorities     []string     `json:"priorities"`
	IssueTypes     []string     `json:"issue_types"`
	CurrentUser    UserResponse `json:"current_user"`
}
