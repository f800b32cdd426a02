package models

// ChatMessage is the JSON body published to and received from a chat room topic.
type ChatMessage struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Message    string `json:"message"`
	ChatRoomID string `json:"chatRoomId,omitempty"`
	SentAt     string `json:"sentAt,omitempty"`
}

// ChatRoomRequest asks the backend to open a room with a tour host.
type ChatRoomRequest struct {
	TourProgramID int    `json:"tourProgramId" binding:"required"`
	HostID        string `json:"hostId" binding:"required"`
}

// ChatRoom is the backend's chat room record.
type ChatRoom struct {
	ID            string `json:"id"`
	TourProgramID int    `json:"tourProgramId"`
	HostID        string `json:"hostId"`
	GuestID       string `json:"guestId"`
}
