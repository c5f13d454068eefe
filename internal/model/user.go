package model

import "encoding/json"

type UserID = ContentID

// User is the identity record returned by the identity endpoints.
type User struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
}

// UnmarshalJSON also accepts the snake_case shape (name, picture, is_admin) older servers send.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		Name    string `json:"name"`
		Picture string `json:"picture"`
		Admin   *bool  `json:"is_admin"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*u = User(aux.plain)
	if u.DisplayName == "" {
		u.DisplayName = aux.Name
	}
	if u.AvatarURL == "" {
		u.AvatarURL = aux.Picture
	}
	if aux.Admin != nil {
		u.IsAdmin = u.IsAdmin || *aux.Admin
	}
	return nil
}

func (u *User) Label() string {
	if u == nil {
		return "anonymous"
	}
	if u.DisplayName != "" && u.Email != "" {
		return u.DisplayName + " <" + u.Email + ">"
	}
	if u.Email != "" {
		return u.Email
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return string(u.ID)
}
