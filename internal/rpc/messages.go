package rpc

// Request and response messages of the user service.  Field names follow
// the wire names used by existing clients.

type PutUserRequest struct {
	UserUUID  string `json:"user_uuid"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type PutUserResponse struct {
	Message string `json:"message"`
}

type GetUserByIDRequest struct {
	UserUUID string `json:"user_uuid"`
}

type GetUserByIDResponse struct {
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type GetUserIDByNameRequest struct {
	UserName string `json:"user_name"`
}

type GetUserIDByNameResponse struct {
	UserUUID string `json:"user_uuid"`
}

// UpdateUserRequest leaves a field unchanged when it is empty.
type UpdateUserRequest struct {
	UserUUID  string `json:"user_uuid"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

type UpdateUserByNameRequest struct {
	CurrentName string `json:"current_name"`
	UserName    string `json:"user_name,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
}

// UpdateUserResponse is shared by both update methods.  Changed is false
// when the request matched the stored record.
type UpdateUserResponse struct {
	Message string `json:"message"`
	Changed bool   `json:"changed"`
}

type User struct {
	UserUUID  string `json:"user_uuid"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type GetAllUsersResponse struct {
	Users []*User `json:"users"`
}
