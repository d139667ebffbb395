package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type KnowledgePassage struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Problem        string          `gorm:"type:text;not null"`
	ProblemHash    string          `gorm:"type:char(64);uniqueIndex"`
	Content        string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 both use 768 dimensions
	Origin         string          `gorm:"type:varchar(32);default:'seed'"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (KnowledgePassage) TableName() string {
	return "knowledge_passages"
}
