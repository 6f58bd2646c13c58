package dto

// CreateGroupRoomRequest payload.
type CreateGroupRoomRequest struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"memberIds" validate:"required,min=1"`
}

// OneOnOneRequest names the counterpart of a direct chat.
type OneOnOneRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

// SendMessageRequest payload. File fields come from a prior upload. RoomID is
// read only when the room is not part of the path.
type SendMessageRequest struct {
	RoomID   string  `json:"roomId"`
	Content  *string `json:"content"`
	FileURL  *string `json:"fileUrl"`
	FileType *string `json:"fileType"`
	FileName *string `json:"fileName"`
}
