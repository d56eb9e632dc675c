package model

type Note struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Ctime  int64  `json:"ctime"`
}
