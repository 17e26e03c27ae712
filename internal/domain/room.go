package domain

import "strconv"

// RoomID is the event id that scopes chat membership and history.
type RoomID int64

func ParseRoomID(raw string) (RoomID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return RoomID(n), nil
}

func (r RoomID) String() string {
	return strconv.FormatInt(int64(r), 10)
}
