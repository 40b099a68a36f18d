package model

import "time"

type Link struct {
	ID          string    `json:"id" bson:"_id"`
	Token       string    `json:"token" bson:"token"`
	OriginalURL string    `json:"originalUrl" bson:"originalUrl"`
	ClickCount  int64     `json:"clickCount" bson:"clickCount"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	OwnerTag    string    `json:"userId,omitempty" bson:"userId,omitempty"`

	// ShortURL is derived from the public base URL and never stored.
	ShortURL string `json:"shortUrl,omitempty" bson:"-"`
}

type CreateReq struct {
	OriginalURL string `json:"originalUrl"`
	UserID      string `json:"userId"`
}

type UpdateReq struct {
	OriginalURL string `json:"originalUrl"`
}

type CreateResp struct {
	URL string `json:"url"`
}

type MessageResp struct {
	Message string `json:"message"`
}

type ErrorResp struct {
	Error string `json:"error"`
}
