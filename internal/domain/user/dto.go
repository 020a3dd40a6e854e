package user

type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=user admin manager driver"`
}

// ListResponse is the body of GET /users/.
type ListResponse struct {
	Users       []User `json:"users"`
	MasterPhone string `json:"master_phone,omitempty"`
}

type ItemResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}
