package handlers

import "github.com/crucial707/user-api/internal/models"

// userResponse is the wire representation of a user record.
type userResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		UserID:   u.ID,
		Username: u.Username,
	}
}

func newUserListResponse(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

// usernameRequest is the body accepted by create and update.
// Username is a pointer so an absent or null field can be told apart from a decode error.
type usernameRequest struct {
	Username *string `json:"username"`
}
