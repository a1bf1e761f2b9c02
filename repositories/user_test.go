package repositories

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

func Test_Directory_Profiles(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(openTestDB(t))

	req.NoError(directory.SaveUser(domain.Profile{ID: "u1", Name: "Bea", AvatarImage: "img-bea"}))
	req.NoError(directory.SaveUser(domain.Profile{ID: "u2", Name: "Ada", AvatarImage: "img-ada"}))

	avatar, err := directory.FindUserAvatar("u1")
	req.NoError(err)
	req.Equal("img-bea", avatar)

	_, err = directory.FindUserAvatar("ghost")
	req.ErrorIs(err, errors.ErrNotFound)

	// Listing excludes the requesting user and sorts by name
	users, err := directory.ListUsers("u1")
	req.NoError(err)
	req.Equal([]domain.UserID{"u2"},
		lo.Map(users, func(p domain.Profile, _ int) domain.UserID { return p.ID }))
}

func Test_Directory_Rooms(t *testing.T) {
	req := require.New(t)
	directory := NewDirectory(openTestDB(t))

	req.NoError(directory.SaveRoom(domain.Room{
		ID: "r1", Name: "gophers", Members: []domain.UserID{"u1", "u2"}, AvatarImage: "img",
	}))
	req.NoError(directory.SaveRoom(domain.Room{
		ID: "r2", Name: "alpinists", Members: []domain.UserID{"u2"},
	}))

	room, err := directory.GetRoom("r1")
	req.NoError(err)
	req.Equal("gophers", room.Name)
	req.True(room.HasMember("u1"))

	_, err = directory.GetRoom("ghost")
	req.ErrorIs(err, errors.ErrNotFound)

	// u2 belongs to both rooms, sorted by name
	rooms, err := directory.ListRoomsFor("u2")
	req.NoError(err)
	req.Equal([]domain.RoomID{"r2", "r1"},
		lo.Map(rooms, func(r domain.Room, _ int) domain.RoomID { return r.ID }))

	// u1 belongs to one
	rooms, err = directory.ListRoomsFor("u1")
	req.NoError(err)
	req.Len(rooms, 1)
}
