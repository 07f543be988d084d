package users

import "github.com/angelmondragon/basket-activity/pkg/db/models"

// UserDTO is the public listing shape; email stays private.
type UserDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name  string
	Email string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{ID: u.ID, Name: u.Name}
}

func FromModels(list []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{Name: c.Name, Email: c.Email}
}
