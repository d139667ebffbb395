package dto

import "github.com/google/uuid"

type CreateKnowledgeRequest struct {
	Problem  string `json:"problem" validate:"required,notblank,max=8000"`
	Solution string `json:"solution" validate:"required,notblank,max=20000"`
}

type CreateKnowledgeResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishKnowledgeMessage is the payload on the ingestion topic.
type PublishKnowledgeMessage struct {
	Id       uuid.UUID `json:"id"`
	Problem  string    `json:"problem"`
	Solution string    `json:"solution"`
	Origin   string    `json:"origin"`
}
