//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_directory.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
	"chat-relay/errors"
)

// Directory persists user profiles and rooms in BadgerDB under the
// "profile:" and "room:" key prefixes. It backs the contact listing and the
// avatar join; socket authentication happens upstream and is not its
// concern.
type Directory struct {
	db *badger.DB
}

func NewDirectory(db *badger.DB) Directory {
	return Directory{db: db}
}

type diskProfile struct {
	ID          domain.UserID `json:"id"`
	Name        string        `json:"name"`
	AvatarImage string        `json:"avatarImage"`
}

type diskRoom struct {
	ID          domain.RoomID   `json:"id"`
	Name        string          `json:"name"`
	Members     []domain.UserID `json:"users"`
	AvatarImage string          `json:"avatarImage"`
}

func profileKey(id domain.UserID) []byte { return []byte("profile:" + id) }
func roomKey(id domain.RoomID) []byte    { return []byte("room:" + id) }

func (d Directory) SaveUser(profile domain.Profile) error {
	bytes, err := json.Marshal(diskProfile{
		ID:          profile.ID,
		Name:        profile.Name,
		AvatarImage: profile.AvatarImage,
	})
	if err != nil {
		return err
	}
	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(profileKey(profile.ID), bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

// FindUserAvatar returns the stored avatar blob for the user.
func (d Directory) FindUserAvatar(user domain.UserID) (string, error) {
	var dp diskProfile
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(user))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &dp)
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return dp.AvatarImage, nil
}

// ListUsers returns every profile except the excluded one, sorted by name.
func (d Directory) ListUsers(exclude domain.UserID) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := d.db.View(func(txn *badger.Txn) error {
		prefix := []byte("profile:")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var dp diskProfile
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &dp)
			})
			if err != nil {
				return err
			}
			if dp.ID == exclude {
				continue
			}
			profiles = append(profiles, domain.Profile{
				ID:          dp.ID,
				Name:        dp.Name,
				AvatarImage: dp.AvatarImage,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func (d Directory) SaveRoom(room domain.Room) error {
	bytes, err := json.Marshal(diskRoom{
		ID:          room.ID,
		Name:        room.Name,
		Members:     room.Members,
		AvatarImage: room.AvatarImage,
	})
	if err != nil {
		return err
	}
	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(room.ID), bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

func (d Directory) GetRoom(id domain.RoomID) (domain.Room, error) {
	var dr diskRoom
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &dr)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return toRoom(dr), nil
}

// ListRoomsFor returns the rooms the user belongs to, sorted by name.
func (d Directory) ListRoomsFor(user domain.UserID) ([]domain.Room, error) {
	var rooms []domain.Room
	err := d.db.View(func(txn *badger.Txn) error {
		prefix := []byte("room:")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var dr diskRoom
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &dr)
			})
			if err != nil {
				return err
			}
			room := toRoom(dr)
			if !room.HasMember(user) {
				continue
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func toRoom(dr diskRoom) domain.Room {
	return domain.Room{
		ID:          dr.ID,
		Name:        dr.Name,
		Members:     dr.Members,
		AvatarImage: dr.AvatarImage,
	}
}
